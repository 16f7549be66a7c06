package store

import (
	"context"

	"github.com/me/tomoflow/pkg/model"
)

// Store defines the persistence layer for tomoflow entities.
type Store interface {
	// Template CRUD
	CreateTemplate(ctx context.Context, tpl *model.Template) error
	GetTemplate(ctx context.Context, id string) (*model.Template, error)
	ListTemplates(ctx context.Context, opts model.ListOptions) ([]*model.Template, int, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Execution sessions
	CreateSession(ctx context.Context, s *model.ExecutionSession) error
	GetSession(ctx context.Context, id string) (*model.ExecutionSession, error)
	ListSessionsByTemplate(ctx context.Context, templateID string) ([]*model.ExecutionSession, error)
	MarkCompleted(ctx context.Context, sessionID string, stepIDs []string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
