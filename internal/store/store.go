// Package store provides the conversation storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/eliza/internal/model"
)

// ErrNotFound is returned when a session does not exist or was deleted.
var ErrNotFound = errors.New("not found")

// CreateParams holds parameters for starting a session.
type CreateParams struct {
	Script   string
	Greeting string
	State    model.State
}

// RecordParams holds one exchange and the conversation state after it.
type RecordParams struct {
	SessionID string
	Input     string
	Reply     string
	State     model.State
}

// ListParams holds parameters for listing sessions.
type ListParams struct {
	Script string
	Since  string // e.g. 7d, 24h; empty means no limit
	Limit  int
}

// RmParams holds parameters for deleting a session.
type RmParams struct {
	ID   string
	Hard bool
}

// Store defines the conversation storage interface.
type Store interface {
	// Create starts a new session.
	Create(ctx context.Context, p CreateParams) (*model.Session, error)

	// Get retrieves a session by ID or unique ID prefix.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Record appends a turn and replaces the session state atomically.
	Record(ctx context.Context, p RecordParams) (*model.Turn, error)

	// Turns returns a session's turns in order.
	Turns(ctx context.Context, id string) ([]model.Turn, error)

	// List lists sessions, most recently active first.
	List(ctx context.Context, p ListParams) ([]model.Session, error)

	// Rm soft-deletes (or hard-deletes) a session.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
