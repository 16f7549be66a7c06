// Package schema holds the step-type registry: which output sockets each
// external operation declares. The graph core consults it only to validate
// the outputName half of a reference; full parameter schemas stay with the
// external tools.
package schema

import (
	"fmt"
	"strings"
)

// Socket is a named result a step type is declared capable of producing.
type Socket struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"` // emdata type the socket carries
}

// StepType declares one external operation and its output sockets.
type StepType struct {
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	Outputs []Socket `json:"outputs"`
}

// HasOutput reports whether the type declares the named socket. A declared
// name also matches with a numeric set suffix, so "TiltSeries_2" resolves
// against a declared "TiltSeries" (protocols producing several sets number
// them this way).
func (t StepType) HasOutput(name string) bool {
	for _, s := range t.Outputs {
		if s.Name == name {
			return true
		}
		if rest, ok := strings.CutPrefix(name, s.Name+"_"); ok && isDigits(rest) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Registry is a versioned table of step types keyed by type name.
type Registry struct {
	types map[string]StepType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]StepType)}
}

// Register adds a step type. Re-registering a name is an error; replacing a
// schema mid-session would silently change validation results.
func (r *Registry) Register(t StepType) error {
	if t.Name == "" {
		return fmt.Errorf("register step type: empty name")
	}
	if _, ok := r.types[t.Name]; ok {
		return fmt.Errorf("step type %q already registered", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Lookup returns the declared type, if registered.
func (r *Registry) Lookup(name string) (StepType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }
