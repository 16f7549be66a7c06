// Package template models cryo-ET workflow template documents: an ordered
// list of step records, each naming the external operation it wraps and
// carrying a flat parameter mapping. Templates are the JSON files exported
// by the host platform; decoding goes through the yaml.v3 node API so that
// key order and raw scalar tokens survive a round trip.
package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved record keys carrying step identity rather than tool parameters.
const (
	KeyClassName     = "object.className"
	KeyID            = "object.id"
	KeyLabel         = "object.label"
	KeyComment       = "object.comment"
	KeyPrerequisites = "_prerequisites"
)

// Param is one named parameter of a step record, in document order.
type Param struct {
	Name  string
	Value Value
}

// Record is one step record of a template document.
type Record struct {
	ClassName string // external operation the step wraps
	ID        string
	Label     string
	Comment   string
	Params    []Param // non-identity keys, document order preserved
}

// Document is a parsed workflow template: records in document order.
type Document struct {
	Records []Record
}

// Decode parses a template document. The input is a JSON (or YAML) array of
// step records.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if len(root.Content) == 0 {
		return &Document{}, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse template: top level must be a list of step records, got %s on line %d", nodeKind(top), top.Line)
	}

	doc := &Document{}
	for i, rn := range top.Content {
		rec, err := recordFromNode(rn)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}

func recordFromNode(n *yaml.Node) (Record, error) {
	if n.Kind != yaml.MappingNode {
		return Record{}, fmt.Errorf("step record must be a mapping, got %s on line %d", nodeKind(n), n.Line)
	}

	var rec Record
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val, err := valueFromNode(n.Content[i+1])
		if err != nil {
			return Record{}, fmt.Errorf("key %q: %w", key, err)
		}

		switch key {
		case KeyClassName:
			rec.ClassName = val.Str
		case KeyID:
			// Ids are written both as strings ("83") and bare integers (83).
			rec.ID = val.Raw()
			if val.Kind == KindString {
				rec.ID = val.Str
			}
		case KeyLabel:
			rec.Label = val.Str
		case KeyComment:
			rec.Comment = val.Str
		default:
			rec.Params = append(rec.Params, Param{Name: key, Value: val})
		}
	}

	if rec.ClassName == "" {
		return Record{}, fmt.Errorf("step record on line %d has no %q", n.Line, KeyClassName)
	}
	if rec.ID == "" {
		return Record{}, fmt.Errorf("step record on line %d has no %q", n.Line, KeyID)
	}
	return rec, nil
}

// Param returns the named parameter value, if present.
func (r Record) Param(name string) (Value, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Prerequisites returns the explicit ordering constraints of the record:
// the "_prerequisites" parameter, written either as a comma-separated id
// string or as a list of ids.
func (r Record) Prerequisites() []string {
	v, ok := r.Param(KeyPrerequisites)
	if !ok {
		return nil
	}

	var ids []string
	switch v.Kind {
	case KindString:
		for _, part := range strings.Split(v.Str, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
	case KindList:
		for _, c := range v.List {
			switch c.Kind {
			case KindString:
				if c.Str != "" {
					ids = append(ids, c.Str)
				}
			case KindInt:
				ids = append(ids, c.Raw())
			}
		}
	case KindInt:
		ids = append(ids, v.Raw())
	}
	return ids
}

// EncodeJSON re-serializes the document as a JSON array of records. Identity
// keys come first in their canonical order, then parameters in document
// order, with literal scalar tokens spliced verbatim.
func (d *Document) EncodeJSON() []byte {
	var b strings.Builder
	b.WriteString("[\n")
	for i, rec := range d.Records {
		if i > 0 {
			b.WriteString(",\n")
		}
		rec.appendJSON(&b)
	}
	b.WriteString("\n]\n")
	return []byte(b.String())
}

func (r Record) appendJSON(b *strings.Builder) {
	b.WriteString("    {\n")
	writeField(b, KeyClassName, quoteJSON(r.ClassName), true)
	writeField(b, KeyID, quoteJSON(r.ID), true)
	writeField(b, KeyLabel, quoteJSON(r.Label), true)
	writeField(b, KeyComment, quoteJSON(r.Comment), len(r.Params) > 0)
	for i, p := range r.Params {
		var v strings.Builder
		p.Value.appendJSON(&v)
		writeField(b, p.Name, v.String(), i < len(r.Params)-1)
	}
	b.WriteString("    }")
}

func writeField(b *strings.Builder, name, encoded string, comma bool) {
	b.WriteString("        ")
	b.WriteString(quoteJSON(name))
	b.WriteString(": ")
	b.WriteString(encoded)
	if comma {
		b.WriteByte(',')
	}
	b.WriteByte('\n')
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return fmt.Sprintf("kind %d", n.Kind)
	}
}
