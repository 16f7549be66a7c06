package model

import (
	"time"

	"github.com/me/tomoflow/pkg/template"
)

// StepNode is one step of a workflow template: identity, the external
// operation it wraps, explicit prerequisites, and its parameter record.
// Nodes are created at parse time and never mutated afterwards; a re-run of
// a template produces fresh nodes.
type StepNode struct {
	ID            string   `json:"id"`
	TypeName      string   `json:"type_name"`
	Label         string   `json:"label,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	DocPos        int      `json:"doc_pos"` // position in the source document

	// Record retains the source record so literal parameter values
	// re-serialize unchanged.
	Record template.Record `json:"-"`

	// References are the parameter values recognized as output references.
	References []OutputReference `json:"references,omitempty"`
}

// OutputReference is a parameter value of the form "<producerId>.<outputName>"
// consuming a named output socket of an upstream step. An empty OutputName
// depends on the producer as a whole.
type OutputReference struct {
	ProducerID string `json:"producer_id"`
	OutputName string `json:"output_name,omitempty"`
	Param      string `json:"param"` // parameter the reference was found under
	Raw        string `json:"raw"`   // original string value
}

// WorkflowGraph is the validated dependency graph of a template: all step
// nodes plus the edges derived from prerequisites and output references.
// It is acyclic, every edge target exists, and ids are unique. The graph is
// built once and never mutated; queries are pure and safe from any goroutine.
type WorkflowGraph struct {
	Nodes []*StepNode `json:"nodes"` // document order

	// Edges maps each step id to the ids it depends on (upstream),
	// ordered by the producer's document position.
	Edges map[string][]string `json:"edges"`

	// Order is the deterministic topological order: every step after all of
	// its transitive dependencies, ties broken by document position.
	Order []string `json:"order"`

	index map[string]*StepNode
}

// NewWorkflowGraph assembles a graph value. Callers go through the graph
// builder, which establishes the invariants before this is reached.
func NewWorkflowGraph(nodes []*StepNode, edges map[string][]string, order []string) *WorkflowGraph {
	idx := make(map[string]*StepNode, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return &WorkflowGraph{Nodes: nodes, Edges: edges, Order: order, index: idx}
}

// Node returns the step with the given id, or nil.
func (g *WorkflowGraph) Node(id string) *StepNode {
	return g.index[id]
}

// Dependencies returns the upstream ids of a step.
func (g *WorkflowGraph) Dependencies(id string) []string {
	return g.Edges[id]
}

// Len returns the number of steps.
func (g *WorkflowGraph) Len() int { return len(g.Nodes) }

// Template is a stored workflow template with its computed graph shape.
type Template struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Raw       string              `json:"-"` // original document text
	Steps     []StepSummary       `json:"steps"`
	Edges     map[string][]string `json:"edges"`
	Order     []string            `json:"order"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// StepSummary is the stored, API-facing shape of a step node.
type StepSummary struct {
	ID        string   `json:"id"`
	TypeName  string   `json:"type_name"`
	Label     string   `json:"label,omitempty"`
	DependsOn []string `json:"depends_on"`
}

// Summarize converts a graph into stored step summaries.
func Summarize(g *WorkflowGraph) []StepSummary {
	out := make([]StepSummary, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		deps := g.Edges[n.ID]
		if deps == nil {
			deps = []string{}
		}
		out = append(out, StepSummary{
			ID:        n.ID,
			TypeName:  n.TypeName,
			Label:     n.Label,
			DependsOn: deps,
		})
	}
	return out
}
