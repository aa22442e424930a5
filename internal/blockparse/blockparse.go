// Package blockparse tokenizes the informal "key: value" / bullet-list text
// that models emit inside fenced code blocks.
//
// Parsing never fails: unrecognized lines degrade to Loose entries, stray
// bullets are dropped, and empty input yields an empty Block.
package blockparse

import (
	"strings"
)

type EntryKind uint8

const (
	// Scalar is "key: value" with a non-empty value.
	Scalar EntryKind = iota
	// List is "key:" with an empty value, optionally followed by "- item" lines.
	List
	// Loose is a line with no colon that is not a bullet.
	Loose
)

// Entry is one logical line of a block.
type Entry struct {
	Kind EntryKind

	// Key is the normalized key: lower-cased, spaces turned to underscores.
	Key string
	// Name is the key as written (trimmed), used for stat names.
	Name string
	// Value is the trimmed scalar value.
	Value string
	// Items holds the bullets of a List entry.
	Items []string

	// Text is the trimmed source line.
	Text string
}

// Block is the ordered entry list of one parsed block.
type Block struct {
	Entries []Entry
}

type state uint8

const (
	scanningHeader state = iota
	inList
)

// Parse tokenizes text. Blank lines and lines starting with '#' are skipped.
func Parse(text string) Block {
	var (
		b   Block
		st  = scanningHeader
		cur = -1
	)
	for raw := range strings.Lines(text) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "-") {
			if st == inList && cur >= 0 {
				b.Entries[cur].Items = append(b.Entries[cur].Items, bulletText(line))
			}
			continue
		}

		st = scanningHeader
		e := lineEntry(line)
		b.Entries = append(b.Entries, e)
		if e.Kind == List {
			st = inList
			cur = len(b.Entries) - 1
		}
	}
	return b
}

func lineEntry(line string) Entry {
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Entry{Kind: Loose, Text: line}
	}
	e := Entry{
		Kind:  Scalar,
		Key:   NormalizeKey(name),
		Name:  name,
		Value: strings.TrimSpace(value),
		Text:  line,
	}
	if e.Value == "" {
		e.Kind = List
	}
	return e
}

// NormalizeKey lower-cases k and turns spaces into underscores.
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
}

func bulletText(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, "-"))
}

// Lookup returns the last entry with the given key.
func (b Block) Lookup(key string) (Entry, bool) {
	for i := len(b.Entries) - 1; i >= 0; i-- {
		if e := b.Entries[i]; e.Kind != Loose && e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Index returns the position of the last entry with the given key, or -1.
func (b Block) Index(key string) int {
	for i := len(b.Entries) - 1; i >= 0; i-- {
		if e := b.Entries[i]; e.Kind != Loose && e.Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key appears in any form.
func (b Block) Has(key string) bool {
	_, ok := b.Lookup(key)
	return ok
}

// Scalar returns the scalar value of key, or "".
func (b Block) Scalar(key string) string {
	e, ok := b.Lookup(key)
	if !ok || e.Kind != Scalar {
		return ""
	}
	return e.Value
}

// List returns the items of key. A scalar value is split on commas.
func (b Block) List(key string) ([]string, bool) {
	e, ok := b.Lookup(key)
	if !ok {
		return nil, false
	}
	return e.List(), true
}

// List returns the bullets of a List entry or the comma-split scalar value.
func (e Entry) List() []string {
	if e.Kind == Scalar {
		return SplitCSV(e.Value)
	}
	return append([]string{}, e.Items...)
}

// FirstLoose returns the first line that is neither "key:" nor a bullet.
func (b Block) FirstLoose() string {
	for _, e := range b.Entries {
		if e.Kind == Loose {
			return e.Text
		}
	}
	return ""
}

// Section collects the "key: value" entries that follow the entry at index
// i, stopping at the first Loose entry or at a key for which stop returns
// true. Bullets under the header that look like "key: value" are included
// first. It returns the collected pairs and the index of the first entry
// not consumed.
func (b Block) Section(i int, stop func(key string) bool) ([]Entry, int) {
	if i < 0 || i >= len(b.Entries) {
		return nil, len(b.Entries)
	}
	var out []Entry
	for _, it := range b.Entries[i].Items {
		if e := lineEntry(it); e.Kind != Loose {
			out = append(out, e)
		}
	}
	j := i + 1
	for ; j < len(b.Entries); j++ {
		e := b.Entries[j]
		if e.Kind == Loose || (stop != nil && stop(e.Key)) {
			break
		}
		out = append(out, e)
	}
	return out, j
}

// SplitCSV splits s on commas, trimming items and dropping empty ones.
func SplitCSV(s string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
