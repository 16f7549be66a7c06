package model

import "time"

// ExecutionSession tracks one host-driven run of a template: which steps the
// orchestrator has reported complete. The graph itself stays immutable; the
// session is the only state that advances, and it only ever grows.
type ExecutionSession struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"template_id"`
	Completed  []string  `json:"completed"` // step ids, insertion order
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CompletedSet returns the completed ids as a lookup set.
func (s *ExecutionSession) CompletedSet() map[string]bool {
	m := make(map[string]bool, len(s.Completed))
	for _, id := range s.Completed {
		m[id] = true
	}
	return m
}

// IsDone reports whether every step of a graph with n steps is complete.
func (s *ExecutionSession) IsDone(n int) bool {
	return len(s.CompletedSet()) >= n
}
