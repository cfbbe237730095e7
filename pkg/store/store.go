// Package store keeps finished layout runs so they can be fetched again by
// ID.
//
// Two backends implement [Store]:
//   - [MemoryStore]: process-local, for tests and single-instance servers
//   - [MongoStore]: MongoDB collection, for deployments that outlive a process
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one completed layout request.
type Run struct {
	ID         string        `bson:"_id" json:"id"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	Iterations int           `bson:"iterations" json:"iterations"`
	NodeCount  int           `bson:"node_count" json:"node_count"`
	EdgeCount  int           `bson:"edge_count" json:"edge_count"`
	Crossings  int           `bson:"crossings" json:"crossings"`
	Duration   time.Duration `bson:"duration" json:"duration"`
	CacheHit   bool          `bson:"cache_hit" json:"cache_hit"`

	// Layout is the JSON document with final positions.
	Layout []byte `bson:"layout" json:"-"`
}

// NewRun returns a run with a fresh random ID and the current time.
func NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// ValidID reports whether id has the form produced by NewRun.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces run.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	Close(ctx context.Context) error
}
