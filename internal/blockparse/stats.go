package blockparse

import (
	"strings"

	"github.com/flexigpt/turnblock-go/spec"
)

// ParseDelta parses a single-line "HP:-1, Gold:+3" list. Parts without a
// colon are skipped.
func ParseDelta(s string) spec.Stats {
	out := spec.Stats{}
	for part := range strings.SplitSeq(s, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		out.Set(name, spec.Coerce(value))
	}
	return out
}

// StatsOf turns section entries into stats, coercing each value.
func StatsOf(entries []Entry) spec.Stats {
	out := spec.Stats{}
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		out.Set(e.Name, spec.Coerce(e.Value))
	}
	return out
}
