package blockparse

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/turnblock-go/spec"
)

// Object is a JSON object body decoded through yaml.v3, which keeps the
// key order of mappings and accepts JSON as a YAML subset.
type Object struct {
	node *yaml.Node
}

// DecodeObject decodes text when it is a JSON (flow-style) object.
// Anything else reports false so callers fall back to line parsing.
func DecodeObject(text string) (Object, bool) {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{") {
		return Object{}, false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(t), &doc); err != nil {
		return Object{}, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Object{}, false
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Object{}, false
	}
	return Object{node: root}, true
}

func (o Object) get(key string) *yaml.Node {
	if o.node == nil {
		return nil
	}
	var found *yaml.Node
	for i := 0; i+1 < len(o.node.Content); i += 2 {
		if NormalizeKey(o.node.Content[i].Value) == key {
			found = o.node.Content[i+1]
		}
	}
	if found == nil || found.Tag == "!!null" {
		return nil
	}
	return found
}

// String returns the scalar at key.
func (o Object) String(key string) (string, bool) {
	n := o.get(key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

// Strings returns the scalar items of the sequence at key. A lone scalar
// becomes a one-item list.
func (o Object) Strings(key string) []string {
	n := o.get(key)
	if n == nil {
		return []string{}
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{n.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, it := range n.Content {
			if it.Kind == yaml.ScalarNode && it.Tag != "!!null" {
				out = append(out, it.Value)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Stats returns the mapping at key as stats. JSON numbers become Int or
// Float; every other scalar is kept as a String.
func (o Object) Stats(key string) spec.Stats {
	out := spec.Stats{}
	n := o.get(key)
	if n == nil || n.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			continue
		}
		switch v.Tag {
		case "!!int", "!!float":
			c := spec.Coerce(v.Value)
			if !c.IsNumber() {
				if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
					c = spec.Float(f)
				}
			}
			out.Set(k.Value, c)
		default:
			out.Set(k.Value, spec.String(v.Value))
		}
	}
	return out
}
