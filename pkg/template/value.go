package template

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a parameter value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindInfinite // unbounded numeric sentinel, greater than every finite value
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindInfinite:
		return "infinite"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is one parameter value from a template record. Scalars keep the raw
// document token so literal values re-serialize byte-identical.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	List   []Value
	Fields []Param // ordered entries of a nested mapping

	raw string
}

// infiniteTokens are the bare scalar spellings accepted as the unbounded
// sentinel. Python's json.dumps emits "Infinity" for float('inf'); YAML
// documents use ".inf" variants, which arrive already resolved as +Inf floats.
var infiniteTokens = map[string]bool{
	"Infinity": true,
	"inf":      true,
	"Inf":      true,
}

// valueFromNode converts a yaml.Node into a Value, preserving the raw scalar
// token and document key order of nested mappings.
func valueFromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarFromNode(n)
	case yaml.SequenceNode:
		v := Value{Kind: KindList}
		for _, c := range n.Content {
			cv, err := valueFromNode(c)
			if err != nil {
				return Value{}, err
			}
			v.List = append(v.List, cv)
		}
		return v, nil
	case yaml.MappingNode:
		v := Value{Kind: KindMap}
		for i := 0; i+1 < len(n.Content); i += 2 {
			cv, err := valueFromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			v.Fields = append(v.Fields, Param{Name: n.Content[i].Value, Value: cv})
		}
		return v, nil
	case yaml.AliasNode:
		return valueFromNode(n.Alias)
	default:
		return Value{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (Value, error) {
	raw := n.Value
	quoted := n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0

	switch n.Tag {
	case "!!null":
		return Value{Kind: KindNull, raw: raw}, nil
	case "!!bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			// YAML spellings like "yes"/"no".
			b = strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") || strings.EqualFold(raw, "on")
		}
		return Value{Kind: KindBool, Bool: b, raw: raw}, nil
	case "!!int":
		i, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: bad integer %q: %w", n.Line, raw, err)
		}
		return Value{Kind: KindInt, Int: i, raw: raw}, nil
	case "!!float":
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, "_", ""), 64)
		// Out-of-range literals like 1e999 parse to +Inf alongside an
		// ErrRange error; the infinity wins.
		if math.IsInf(f, 1) {
			return Value{Kind: KindInfinite, raw: raw}, nil
		}
		if err != nil {
			// YAML ".inf" spellings.
			if strings.HasSuffix(strings.ToLower(raw), ".inf") && !strings.HasPrefix(raw, "-") {
				return Value{Kind: KindInfinite, raw: raw}, nil
			}
			return Value{}, fmt.Errorf("line %d: bad float %q: %w", n.Line, raw, err)
		}
		return Value{Kind: KindFloat, Float: f, raw: raw}, nil
	default:
		// Bare (unquoted) unbounded tokens arrive as plain strings. So do
		// out-of-range literals like 1e999, which the yaml resolver refuses
		// to tag !!float but strconv still reads as +Inf.
		if !quoted {
			if infiniteTokens[raw] {
				return Value{Kind: KindInfinite, raw: raw}, nil
			}
			if f, _ := strconv.ParseFloat(raw, 64); math.IsInf(f, 1) {
				return Value{Kind: KindInfinite, raw: raw}, nil
			}
		}
		return Value{Kind: KindString, Str: raw, raw: raw}, nil
	}
}

// String returns a display form of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindInfinite:
		if v.raw != "" {
			return v.raw
		}
		return "Infinity"
	case KindList:
		parts := make([]string, len(v.List))
		for i, c := range v.List {
			parts[i] = c.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Name + ": " + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.raw
	}
}

// Raw returns the original scalar token, or "" for lists and maps.
func (v Value) Raw() string { return v.raw }

// IsScalar reports whether the value is a leaf (not a list or map).
func (v Value) IsScalar() bool { return v.Kind != KindList && v.Kind != KindMap }

// AsFloat returns the numeric value of an int or float scalar.
// The unbounded sentinel maps to +Inf.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindInfinite:
		return math.Inf(1), true
	default:
		return 0, false
	}
}

// GreaterThan reports whether the value is strictly greater than f.
// The unbounded sentinel is greater than every finite value.
func (v Value) GreaterThan(f float64) bool {
	if v.Kind == KindInfinite {
		return !math.IsInf(f, 1)
	}
	n, ok := v.AsFloat()
	return ok && n > f
}

// appendJSON writes the value as JSON, splicing the raw token for numeric
// scalars and the unbounded sentinel so literals round-trip unchanged.
func (v Value) appendJSON(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt, KindFloat:
		b.WriteString(v.raw)
	case KindInfinite:
		if v.raw != "" {
			b.WriteString(v.raw)
		} else {
			b.WriteString("Infinity")
		}
	case KindString:
		b.WriteString(quoteJSON(v.Str))
	case KindList:
		b.WriteByte('[')
		for i, c := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			c.appendJSON(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteJSON(f.Name))
			b.WriteString(": ")
			f.Value.appendJSON(b)
		}
		b.WriteByte('}')
	}
}

// quoteJSON quotes a string with the minimal JSON escapes.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
