// Package menu reads the protocol menu description: an INI-style file whose
// sections group step-type names into a UI tree. The grouping is purely
// presentational — it carries no dependency information and is never
// consulted for execution order.
package menu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one node of a menu tree.
type Entry struct {
	Tag      string  `yaml:"tag" json:"tag"`           // "section" or "protocol"
	Text     string  `yaml:"text" json:"text"`         // display label
	Value    string  `yaml:"value,omitempty" json:"value,omitempty"` // step-type name for protocol entries
	Icon     string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	OpenItem string  `yaml:"openItem,omitempty" json:"open_item,omitempty"` // "True"/"False" strings in the wild
	Children []Entry `yaml:"children,omitempty" json:"children,omitempty"`
}

// Tree is one named menu inside a section: "Tomography = [ ...entries... ]".
type Tree struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Section is one bracketed block of the file, e.g. [PROTOCOLS].
type Section struct {
	Name  string `json:"name"`
	Trees []Tree `json:"trees"`
}

// Menu is a parsed menu description file.
type Menu struct {
	Sections []Section `json:"sections"`
}

// Section returns the named section, if present.
func (m *Menu) Section(name string) (*Section, bool) {
	for i := range m.Sections {
		if m.Sections[i].Name == name {
			return &m.Sections[i], true
		}
	}
	return nil, false
}

// StepTypes returns every step-type name mentioned by the menu, in
// appearance order without duplicates.
func (m *Menu) StepTypes() []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(es []Entry)
	walk = func(es []Entry) {
		for _, e := range es {
			if e.Tag == "protocol" && e.Value != "" && !seen[e.Value] {
				seen[e.Value] = true
				out = append(out, e.Value)
			}
			walk(e.Children)
		}
	}
	for _, s := range m.Sections {
		for _, tr := range s.Trees {
			walk(tr.Entries)
		}
	}
	return out
}

// ParseFile reads and parses a menu description from disk.
func ParseFile(name string) (*Menu, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open menu: %w", err)
	}
	defer fh.Close()
	m, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return m, nil
}

// Parse reads a menu description. Each "Name = value" line holds a JSON
// array of entries; a value may continue over several lines until its
// brackets balance.
func Parse(r io.Reader) (*Menu, error) {
	m := &Menu{}
	var cur *Section

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, ";") {
			continue
		}

		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			m.Sections = append(m.Sections, Section{Name: strings.TrimSpace(text[1 : len(text)-1])})
			cur = &m.Sections[len(m.Sections)-1]
			continue
		}

		i := strings.Index(text, "=")
		if i < 0 {
			return nil, fmt.Errorf("line %d: expected 'Name = value', got %q", line, text)
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: entry before any [SECTION]", line)
		}
		name := strings.TrimSpace(text[:i])
		value := strings.TrimSpace(text[i+1:])

		// Continue reading while the bracket structure is open.
		for bracketDepth(value) > 0 && sc.Scan() {
			line++
			value += "\n" + sc.Text()
		}

		var entries []Entry
		if err := yaml.Unmarshal([]byte(value), &entries); err != nil {
			return nil, fmt.Errorf("line %d: menu %q: %w", line, name, err)
		}
		cur.Trees = append(cur.Trees, Tree{Name: name, Entries: entries})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// bracketDepth counts unbalanced brackets outside string literals.
func bracketDepth(s string) int {
	depth := 0
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '[', '{':
			if !inString {
				depth++
			}
		case ']', '}':
			if !inString {
				depth--
			}
		}
	}
	return depth
}
