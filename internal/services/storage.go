package services

import (
	"context"

	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for template assets and edit sessions.
// Templates are static JSON files; edit sessions are the transient undo
// records of reconciliation runs.
type Storage interface {
	HealthChecker
	Closer

	// ListTemplates returns template display names mapped to filenames
	ListTemplates(ctx context.Context) (map[string]string, error)

	// GetTemplate loads a template into a normalized editable context
	GetTemplate(ctx context.Context, filename string) (*scene.Template, error)

	// SaveTemplate writes a template back to its storage location,
	// atomically and as a whole
	SaveTemplate(ctx context.Context, t *scene.Template) error

	// SaveEditSession persists the edit log of a run under its run ID
	SaveEditSession(ctx context.Context, log *rig.EditLog) error

	// GetEditSession retrieves an edit log by run ID.
	// Returns nil if the session doesn't exist or has expired
	GetEditSession(ctx context.Context, runID string) (*rig.EditLog, error)

	// DeleteEditSession removes an edit log by run ID
	DeleteEditSession(ctx context.Context, runID string) error
}
