package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPattern     = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
)

type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueInt
	ValueFloat
)

// Value is a stat value: an integer, a float or a free-form string.
// The zero value is the empty string.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

func Int(n int64) Value     { return Value{kind: ValueInt, i: n} }
func Float(f float64) Value { return Value{kind: ValueFloat, f: f} }
func String(s string) Value { return Value{kind: ValueString, s: s} }

// Coerce turns text into an Int when it is an optionally signed integer,
// into a Float when it is an optionally signed decimal, and keeps it as a
// String otherwise.
func Coerce(text string) Value {
	t := strings.TrimSpace(text)
	if intPattern.MatchString(t) {
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return Int(n)
		}
	}
	if decimalPattern.MatchString(t) {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return Float(f)
		}
	}
	return String(t)
}

func (v Value) Kind() ValueKind { return v.kind }

// IsNumber reports whether v holds an Int or a Float.
func (v Value) IsNumber() bool { return v.kind == ValueInt || v.kind == ValueFloat }

// Int returns the integer held by v.
func (v Value) Int() (int64, bool) {
	if v.kind != ValueInt {
		return 0, false
	}
	return v.i, true
}

// Float returns v as a float64 when it is numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case ValueInt:
		return float64(v.i), true
	case ValueFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Numeric returns v when it is a number, the coerced number when v is a
// numeric-looking string, and Int(0) otherwise.
func (v Value) Numeric() Value {
	if v.IsNumber() {
		return v
	}
	if c := Coerce(v.s); c.IsNumber() {
		return c
	}
	return Int(0)
}

// Add returns v+o over the numeric forms of both; integers stay integral.
func (v Value) Add(o Value) Value {
	a, b := v.Numeric(), o.Numeric()
	if a.kind == ValueInt && b.kind == ValueInt {
		return Int(a.i + b.i)
	}
	af, _ := a.Float()
	bf, _ := b.Float()
	return Float(af + bf)
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueInt:
		return v.i == o.i
	case ValueFloat:
		return v.f == o.f
	default:
		return v.s == o.s
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return v.s
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case ValueFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("%w: non-finite stat value", ErrInvalidArgument)
		}
		// Keep a fraction so integral floats decode as floats again.
		return []byte(v.String()), nil
	default:
		return json.Marshal(v.s)
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: stat value must be a number or string", ErrInvalidArgument)
	}
	if i, err := n.Int64(); err == nil {
		*v = Int(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*v = Float(f)
	return nil
}

// StatEntry is one named stat.
type StatEntry struct {
	Name  string
	Value Value
}

// Stats is an insertion-ordered stat mapping.
type Stats []StatEntry

func (s Stats) Get(name string) (Value, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set overwrites an existing stat in place or appends a new one.
func (s *Stats) Set(name string, v Value) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Value = v
			return
		}
	}
	*s = append(*s, StatEntry{Name: name, Value: v})
}

func (s Stats) Clone() Stats {
	return append(Stats{}, s...)
}

// MarshalJSON encodes the stats as a JSON object, keeping insertion order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		v, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (s *Stats) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: stats must be a JSON object", ErrInvalidArgument)
	}
	out := Stats{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		out.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
