// Package store persists computed layouts so that they can be fetched and
// rendered later by ID.
//
// Implementations:
//   - [MemoryStore]: in-process storage for the CLI and tests
//   - [MongoStore]: MongoDB-backed storage for the HTTP server
//
// # Usage
//
//	st, err := store.NewMongoStore(ctx, "mongodb://localhost:27017", "breadthfirst")
//	if err != nil {
//	    return err
//	}
//	defer st.Close(ctx)
//
//	id, err := st.Save(ctx, &layout)
//	saved, err := st.Get(ctx, id)
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/breadthfirst/pkg/graph"
)

// ErrNotFound is returned when no layout has the requested ID.
var ErrNotFound = errors.New("layout not found")

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

// Summary describes a saved layout without its positions.
type Summary struct {
	ID         string    `json:"id" bson:"_id"`
	GraphHash  string    `json:"graph_hash,omitempty" bson:"graph_hash,omitempty"`
	NodeCount  int       `json:"node_count" bson:"node_count"`
	LevelCount int       `json:"level_count" bson:"level_count"`
	Warnings   int       `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for saved layout backends.
type Store interface {
	// Save stores l and returns its ID. A layout without ID is assigned a
	// new UUID; saving a layout with an existing ID replaces it.
	Save(ctx context.Context, l *graph.Layout) (string, error)

	// Get retrieves a layout by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (graph.Layout, error)

	// Delete removes a layout. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// List returns summaries of the most recent layouts, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewID generates a layout ID.
func NewID() string {
	return uuid.NewString()
}

// Summarize builds the summary of a layout.
func Summarize(l *graph.Layout) Summary {
	return Summary{
		ID:         l.ID,
		GraphHash:  l.GraphHash,
		NodeCount:  len(l.Nodes),
		LevelCount: len(l.Levels),
		Warnings:   len(l.Warnings),
		CreatedAt:  l.CreatedAt,
	}
}

// prepare assigns an ID and creation time where missing.
func prepare(l *graph.Layout) {
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
