package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/tomoflow/pkg/model"
)

// handleCreateTemplate parses, validates, and stores a workflow template.
// The request body is the template document itself, optionally wrapped in
// {"name": ..., "document": ...}.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "cannot read request body: " + err.Error(),
		})
		return
	}

	name, doc := unwrapTemplateBody(body)
	nodes, err := s.parser.Parse(doc)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: err.Error(),
		})
		return
	}

	graph, err := s.parser.Build(nodes)
	if err != nil {
		// All four structural errors surface with field details so the
		// host sees exactly which step and reference broke the document.
		if apiErr := s.validator.Validate(nodes); apiErr != nil {
			respondError(w, reqID, http.StatusBadRequest, apiErr)
			return
		}
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: err.Error(),
		})
		return
	}

	now := time.Now().UTC()
	tpl := &model.Template{
		ID:        "tpl_" + uuid.New().String(),
		Name:      name,
		Raw:       string(doc),
		Steps:     model.Summarize(graph),
		Edges:     graph.Edges,
		Order:     graph.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTemplate(r.Context(), tpl); err != nil {
		s.logger.Error("create template", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot store template",
		})
		return
	}

	respondCreated(w, reqID, tpl)
}

// unwrapTemplateBody accepts either a bare template document (a JSON array)
// or a {"name", "document"} wrapper.
func unwrapTemplateBody(body []byte) (name string, doc []byte) {
	var wrapper struct {
		Name     string          `json:"name"`
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Document) > 0 {
		name = wrapper.Name
		doc = wrapper.Document
	} else {
		doc = body
	}
	if name == "" {
		name = "unnamed-template"
	}
	return name, doc
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := listOptionsFromQuery(r)
	tpls, total, err := s.store.ListTemplates(r.Context(), opts)
	if err != nil {
		s.logger.Error("list templates", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot list templates",
		})
		return
	}

	respondList(w, reqID, tpls, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(tpls) < total,
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tpl, err := s.getTemplate(w, r, id)
	if tpl == nil || err != nil {
		return
	}
	respondOK(w, reqID, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := s.store.DeleteTemplate(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("template", id))
		return
	}
	if err != nil {
		s.logger.Error("delete template", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot delete template",
		})
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}

// handleValidateTemplate re-validates a stored template's raw document and
// reports every problem found, not just the first.
func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tpl, err := s.getTemplate(w, r, id)
	if tpl == nil || err != nil {
		return
	}

	nodes, parseErr := s.parser.Parse([]byte(tpl.Raw))
	if parseErr != nil {
		respondOK(w, reqID, map[string]any{
			"valid":  false,
			"errors": []model.FieldError{{Field: "document", Message: parseErr.Error()}},
		})
		return
	}
	if apiErr := s.validator.Validate(nodes); apiErr != nil {
		respondOK(w, reqID, map[string]any{"valid": false, "errors": apiErr.Details})
		return
	}
	respondOK(w, reqID, map[string]any{"valid": true, "errors": []model.FieldError{}})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tpl, err := s.getTemplate(w, r, id)
	if tpl == nil || err != nil {
		return
	}
	respondOK(w, reqID, map[string]any{"template_id": tpl.ID, "order": tpl.Order})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tpl, err := s.getTemplate(w, r, id)
	if tpl == nil || err != nil {
		return
	}
	respondOK(w, reqID, map[string]any{
		"template_id": tpl.ID,
		"steps":       tpl.Steps,
		"edges":       tpl.Edges,
	})
}

// getTemplate loads a template, writing the 404/500 response itself when the
// lookup fails. Callers bail out on a nil template.
func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request, id string) (*model.Template, error) {
	reqID := RequestIDFromContext(r.Context())

	tpl, err := s.store.GetTemplate(r.Context(), id)
	if err != nil {
		s.logger.Error("get template", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot load template",
		})
		return nil, err
	}
	if tpl == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("template", id))
		return nil, nil
	}
	return tpl, nil
}

func listOptionsFromQuery(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := atoiQuery(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := atoiQuery(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Name = q.Get("name")
	opts.Clamp()
	return opts
}

func atoiQuery(s string) (int, error) {
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
