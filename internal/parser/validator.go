package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/me/tomoflow/pkg/model"
	"github.com/me/tomoflow/pkg/template"
)

// Validator reports template problems as API field errors. Build fails fast
// on the first structural error; the validator instead collects everything
// wrong with a document, which is what the validate endpoint and the CLI
// want to show.
type Validator struct {
	parser *Parser
	logger *slog.Logger
}

// NewValidator creates a Validator sharing the parser's registry.
func NewValidator(p *Parser, logger *slog.Logger) *Validator {
	return &Validator{parser: p, logger: logger.With("component", "validator")}
}

// Validate checks a parsed step list. Returns nil if the document builds, or
// an APIError whose details name every offending step and reference found.
func (v *Validator) Validate(nodes []*model.StepNode) *model.APIError {
	var errs []model.FieldError

	errs = append(errs, v.checkIDs(nodes)...)
	errs = append(errs, v.checkReferences(nodes)...)

	// Cycle detection needs a structurally sound id space; skip it when the
	// earlier passes already failed.
	if len(errs) == 0 {
		if _, err := v.parser.Build(nodes); err != nil {
			errs = append(errs, fieldErrorFor(err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return model.NewValidationError("template validation failed", errs...)
}

func (v *Validator) checkIDs(nodes []*model.StepNode) []model.FieldError {
	var errs []model.FieldError
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			errs = append(errs, model.FieldError{
				Field:   "steps." + n.ID,
				Message: fmt.Sprintf("duplicate step id %q", n.ID),
			})
		}
		seen[n.ID] = true
	}
	return errs
}

func (v *Validator) checkReferences(nodes []*model.StepNode) []model.FieldError {
	var errs []model.FieldError

	index := make(map[string]*model.StepNode, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}

	for _, n := range nodes {
		for _, pre := range n.Prerequisites {
			if _, ok := index[pre]; !ok {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("steps.%s._prerequisites", n.ID),
					Message: fmt.Sprintf("prerequisite %q names no step in the document", pre),
				})
			}
		}
		for _, param := range n.Record.Params {
			if param.Name == template.KeyPrerequisites {
				continue
			}
			if _, err := v.parser.resolveParam(n, param.Name, param.Value, index); err != nil {
				errs = append(errs, fieldErrorFor(err))
			}
		}
	}
	return errs
}

// fieldErrorFor maps a structural graph error onto its offending field.
func fieldErrorFor(err error) model.FieldError {
	var dup *model.DuplicateIDError
	var dangling *model.DanglingReferenceError
	var socket *model.UnknownOutputSocketError
	var cycle *model.CyclicDependencyError

	switch {
	case errors.As(err, &dup):
		return model.FieldError{Field: "steps." + dup.ID, Message: err.Error()}
	case errors.As(err, &dangling):
		return model.FieldError{Field: "steps." + dangling.StepID, Message: err.Error()}
	case errors.As(err, &socket):
		return model.FieldError{Field: "steps." + socket.StepID, Message: err.Error()}
	case errors.As(err, &cycle):
		return model.FieldError{Field: "steps", Message: err.Error()}
	default:
		return model.FieldError{Field: "document", Message: err.Error()}
	}
}
