// Package parser turns workflow template documents into validated dependency
// graphs: step nodes, the edges derived from prerequisites and output
// references, cycle detection, and a deterministic topological order.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/me/tomoflow/internal/schema"
	"github.com/me/tomoflow/pkg/model"
	"github.com/me/tomoflow/pkg/template"
)

// Parser parses template documents into step nodes and builds their graph.
type Parser struct {
	logger   *slog.Logger
	registry *schema.Registry
}

// New creates a Parser validating references against the given step-type
// registry.
func New(logger *slog.Logger, registry *schema.Registry) *Parser {
	return &Parser{
		logger:   logger.With("component", "parser"),
		registry: registry,
	}
}

// Parse decodes a template document into step nodes, document order
// preserved. No cross-step validation happens here; that is Build's job.
func (p *Parser) Parse(data []byte) ([]*model.StepNode, error) {
	doc, err := template.Decode(data)
	if err != nil {
		return nil, err
	}
	return p.Steps(doc), nil
}

// Steps converts an already-decoded document into step nodes.
func (p *Parser) Steps(doc *template.Document) []*model.StepNode {
	nodes := make([]*model.StepNode, 0, len(doc.Records))
	for i, rec := range doc.Records {
		nodes = append(nodes, &model.StepNode{
			ID:            rec.ID,
			TypeName:      rec.ClassName,
			Label:         rec.Label,
			Comment:       rec.Comment,
			Prerequisites: rec.Prerequisites(),
			DocPos:        i,
			Record:        rec,
		})
	}
	return nodes
}

// Load parses a document and builds its graph in one go.
func (p *Parser) Load(data []byte) (*model.WorkflowGraph, error) {
	nodes, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return p.Build(nodes)
}
