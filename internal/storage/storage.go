// Package storage provides composable persistence interfaces for Cogito.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed: the knowledge graph,
// the vector index, and the conversation log each depend only on the
// interface they use. All in-memory components work without a store and
// treat persistence as optional write-through.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/codelegend/cogito/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// GraphStore persists knowledge graph entities and relationships.
type GraphStore interface {
	// SaveEntity creates or updates an entity (upsert by ID).
	SaveEntity(ctx context.Context, entity *types.Entity) error

	// SaveRelationship creates or updates a relationship (upsert by ID).
	SaveRelationship(ctx context.Context, rel *types.Relationship) error

	// DeleteEntity removes an entity by ID. Relationships referencing it
	// are removed as well. Returns ErrNotFound if the entity doesn't exist.
	DeleteEntity(ctx context.Context, id string) error

	// DeleteRelationship removes a relationship by ID.
	// Returns ErrNotFound if the relationship doesn't exist.
	DeleteRelationship(ctx context.Context, id string) error

	// Entities returns all persisted entities.
	Entities(ctx context.Context) ([]*types.Entity, error)

	// Relationships returns all persisted relationships.
	Relationships(ctx context.Context) ([]*types.Relationship, error)
}

// DocumentStore persists vector index documents with their embeddings.
type DocumentStore interface {
	// SaveDocument creates or updates a document (upsert by ID).
	SaveDocument(ctx context.Context, doc *types.Document) error

	// DeleteDocument removes a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// Documents returns all persisted documents, embeddings included.
	Documents(ctx context.Context) ([]*types.Document, error)

	// DeleteDocumentsOlderThan removes documents with a timestamp before
	// cutoff and returns how many were removed.
	DeleteDocumentsOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ConversationStore persists per-session conversation messages.
type ConversationStore interface {
	// SaveMessage appends a message to a session.
	SaveMessage(ctx context.Context, sessionID string, msg types.Message) error

	// RecentMessages returns the last n messages for a session in
	// chronological order. An unknown session yields an empty slice.
	RecentMessages(ctx context.Context, sessionID string, n int) ([]types.Message, error)

	// Sessions returns the IDs of all sessions with at least one message.
	Sessions(ctx context.Context) ([]string, error)
}
