package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/tomoflow/internal/scheduler"
	"github.com/me/tomoflow/pkg/model"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "invalid JSON body: " + err.Error(),
		})
		return
	}
	if req.TemplateID == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"template_id is required",
			model.FieldError{Field: "template_id", Message: "must not be empty"},
		))
		return
	}

	tpl, err := s.getTemplate(w, r, req.TemplateID)
	if tpl == nil || err != nil {
		return
	}

	now := time.Now().UTC()
	sess := &model.ExecutionSession{
		ID:         "ses_" + uuid.New().String(),
		TemplateID: tpl.ID,
		Completed:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateSession(r.Context(), sess); err != nil {
		s.logger.Error("create session", "template_id", tpl.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot store session",
		})
		return
	}

	respondCreated(w, reqID, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sess, err := s.getSession(w, r, id)
	if sess == nil || err != nil {
		return
	}
	respondOK(w, reqID, sess)
}

// handleCompleteSteps records one or more finished steps. Step ids that do
// not belong to the session's template are rejected before anything is
// written, so a typo cannot poison the completed set.
func (s *Server) handleCompleteSteps(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		StepIDs []string `json:"step_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.StepIDs) == 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"step_ids is required",
			model.FieldError{Field: "step_ids", Message: "must list at least one step id"},
		))
		return
	}

	sess, err := s.getSession(w, r, id)
	if sess == nil || err != nil {
		return
	}
	graph, ok := s.sessionGraph(w, r, sess)
	if !ok {
		return
	}

	var unknown []model.FieldError
	for _, stepID := range req.StepIDs {
		if graph.Node(stepID) == nil {
			unknown = append(unknown, model.FieldError{
				Field: "step_ids", Message: "unknown step id " + stepID,
			})
		}
	}
	if len(unknown) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"step ids not in template", unknown...))
		return
	}

	if err := s.store.MarkCompleted(r.Context(), sess.ID, req.StepIDs); err != nil {
		s.logger.Error("mark completed", "session_id", sess.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot record completions",
		})
		return
	}

	sess, err = s.getSession(w, r, id)
	if sess == nil || err != nil {
		return
	}
	respondOK(w, reqID, map[string]any{
		"session":   sess,
		"done":      sess.IsDone(graph.Len()),
		"ready":     scheduler.Ready(graph, sess.CompletedSet()),
		"remaining": graph.Len() - len(sess.CompletedSet()),
	})
}

// handleGetReady answers the central orchestration question: which steps can
// start right now, given everything the session has completed.
func (s *Server) handleGetReady(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sess, err := s.getSession(w, r, id)
	if sess == nil || err != nil {
		return
	}
	graph, ok := s.sessionGraph(w, r, sess)
	if !ok {
		return
	}

	completed := sess.CompletedSet()
	respondOK(w, reqID, map[string]any{
		"session_id": sess.ID,
		"ready":      scheduler.Ready(graph, completed),
		"done":       sess.IsDone(graph.Len()),
	})
}

// sessionGraph rebuilds the dependency graph from the session's stored
// template. Templates are validated at create time, so a build failure here
// means the stored document was corrupted.
func (s *Server) sessionGraph(w http.ResponseWriter, r *http.Request, sess *model.ExecutionSession) (*model.WorkflowGraph, bool) {
	reqID := RequestIDFromContext(r.Context())

	tpl, err := s.getTemplate(w, r, sess.TemplateID)
	if tpl == nil || err != nil {
		return nil, false
	}
	graph, err := s.parser.Load([]byte(tpl.Raw))
	if err != nil {
		s.logger.Error("rebuild graph", "template_id", tpl.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "stored template no longer builds",
		})
		return nil, false
	}
	return graph, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, id string) (*model.ExecutionSession, error) {
	reqID := RequestIDFromContext(r.Context())

	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.logger.Error("get session", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "cannot load session",
		})
		return nil, err
	}
	if sess == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("session", id))
		return nil, nil
	}
	return sess, nil
}
