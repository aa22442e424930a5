// Package prompts holds the block format instructions that tell a model how
// to write quiz and rpg blocks.
package prompts

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/turnblock-go/spec"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Template is one block format instruction.
type Template struct {
	Key            spec.Lang `yaml:"key"            json:"key"`
	SettingName    string    `yaml:"settingName"    json:"settingName"`
	Title          string    `yaml:"title"          json:"title"`
	Description    string    `yaml:"description"    json:"description"`
	Editable       bool      `yaml:"editable"       json:"editable"`
	ShowInSettings bool      `yaml:"showInSettings" json:"showInSettings"`
	Default        bool      `yaml:"default"        json:"default"`
	Text           string    `yaml:"text"           json:"text"`
}

// Filter selects templates. The zero value matches every template.
type Filter struct {
	// Langs restricts to these block languages. Empty means "all".
	Langs []spec.Lang

	// Kinds restricts to the languages of these engines. Empty means "all".
	Kinds []spec.EngineKind

	// DefaultOnly drops templates that are off by default.
	DefaultOnly bool
}

func (f Filter) match(t Template) bool {
	if len(f.Langs) > 0 && !slices.Contains(f.Langs, t.Key) {
		return false
	}
	if len(f.Kinds) > 0 {
		k, ok := t.Key.Kind()
		if !ok || !slices.Contains(f.Kinds, k) {
			return false
		}
	}
	if f.DefaultOnly && !t.Default {
		return false
	}
	return true
}

var (
	loadOnce  sync.Once
	loaded    []Template
	errLoaded error
)

// All returns the built-in templates in block-language order.
func All() ([]Template, error) {
	loadOnce.Do(func() {
		loaded, errLoaded = Parse(promptsYAML)
	})
	if errLoaded != nil {
		return nil, errLoaded
	}
	return slices.Clone(loaded), nil
}

// Select returns the built-in templates matching f.
func Select(f Filter) ([]Template, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	return f.Select(all), nil
}

// Select returns the templates of ts matching f, in order.
func (f Filter) Select(ts []Template) []Template {
	out := make([]Template, 0, len(ts))
	for _, t := range ts {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Parse decodes a YAML list of templates. Every template needs a known
// block language and a non-empty text, and keys must be unique.
func Parse(b []byte) ([]Template, error) {
	var ts []Template
	if err := yaml.Unmarshal(b, &ts); err != nil {
		return nil, fmt.Errorf("%w: prompts yaml: %w", spec.ErrInvalidArgument, err)
	}
	seen := map[spec.Lang]bool{}
	for i := range ts {
		t := &ts[i]
		t.Key = spec.Lang(strings.TrimSpace(string(t.Key)))
		if _, ok := t.Key.Kind(); !ok {
			return nil, fmt.Errorf("%w: prompt %d: unknown block language %q", spec.ErrInvalidArgument, i, t.Key)
		}
		if seen[t.Key] {
			return nil, fmt.Errorf("%w: prompt %q defined twice", spec.ErrInvalidArgument, t.Key)
		}
		seen[t.Key] = true
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("%w: prompt %q has no text", spec.ErrInvalidArgument, t.Key)
		}
		if t.SettingName == "" {
			t.SettingName = string(t.Key)
		}
	}
	order := spec.Langs()
	slices.SortStableFunc(ts, func(a, b Template) int {
		return slices.Index(order, a.Key) - slices.Index(order, b.Key)
	})
	return ts, nil
}
