// Package sqlite implements the storage interfaces on a single SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/codelegend/cogito/internal/storage"
	"github.com/codelegend/cogito/pkg/types"
)

// Store implements storage.GraphStore, storage.DocumentStore, and
// storage.ConversationStore over one SQLite database.
type Store struct {
	db *sql.DB
}

// Compile-time interface assertions.
var (
	_ storage.GraphStore        = (*Store)(nil)
	_ storage.DocumentStore     = (*Store)(nil)
	_ storage.ConversationStore = (*Store)(nil)
)

// NewStore opens a SQLite database, configures WAL mode, and creates the
// schema. Use ":memory:" as the DSN for an in-memory store.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing with SQLITE_BUSY when the connection is held
	// by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEntity creates or updates an entity by ID.
func (s *Store) SaveEntity(ctx context.Context, entity *types.Entity) error {
	if entity == nil || entity.ID == "" {
		return fmt.Errorf("%w: entity with ID is required", storage.ErrInvalidInput)
	}

	props, err := marshalJSON(entity.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal entity properties: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (id, name, type, properties, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			properties = excluded.properties,
			updated_at = excluded.updated_at`,
		entity.ID, entity.Name, entity.Type, props, entity.CreatedAt, entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// SaveRelationship creates or updates a relationship by ID.
func (s *Store) SaveRelationship(ctx context.Context, rel *types.Relationship) error {
	if rel == nil || rel.ID == "" {
		return fmt.Errorf("%w: relationship with ID is required", storage.ErrInvalidInput)
	}

	props, err := marshalJSON(rel.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal relationship properties: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO relationships (id, source_id, target_id, type, properties, weight, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			target_id = excluded.target_id,
			type = excluded.type,
			properties = excluded.properties,
			weight = excluded.weight`,
		rel.ID, rel.SourceID, rel.TargetID, rel.Type, props, rel.Weight, rel.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save relationship: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity; the schema cascades to its relationships.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return requireAffected(res)
}

// DeleteRelationship removes a relationship by ID.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	return requireAffected(res)
}

// Entities returns all persisted entities.
func (s *Store) Entities(ctx context.Context) ([]*types.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, properties, created_at, updated_at FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []*types.Entity
	for rows.Next() {
		var (
			e     types.Entity
			props sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &props, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		if props.Valid && props.String != "" {
			if err := json.Unmarshal([]byte(props.String), &e.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entity properties: %w", err)
			}
		}
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// Relationships returns all persisted relationships.
func (s *Store) Relationships(ctx context.Context) ([]*types.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, target_id, type, properties, weight, created_at FROM relationships`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rels []*types.Relationship
	for rows.Next() {
		var (
			r     types.Relationship
			props sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &props, &r.Weight, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		if props.Valid && props.String != "" {
			if err := json.Unmarshal([]byte(props.String), &r.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal relationship properties: %w", err)
			}
		}
		rels = append(rels, &r)
	}
	return rels, rows.Err()
}

// SaveDocument creates or updates a document by ID. The embedding is stored
// as a JSON array.
func (s *Store) SaveDocument(ctx context.Context, doc *types.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document with ID is required", storage.ErrInvalidInput)
	}

	meta, err := marshalJSON(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal document metadata: %w", err)
	}

	var embedding []byte
	if len(doc.Embedding) > 0 {
		embedding, err = json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, content, metadata, doc_type, timestamp, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			doc_type = excluded.doc_type,
			embedding = excluded.embedding`,
		doc.ID, doc.Content, meta, doc.DocType, doc.Timestamp, embedding)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document by ID.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireAffected(res)
}

// Documents returns all persisted documents, embeddings included.
func (s *Store) Documents(ctx context.Context) ([]*types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, metadata, doc_type, timestamp, embedding FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*types.Document
	for rows.Next() {
		var (
			d         types.Document
			meta      sql.NullString
			embedding sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Content, &meta, &d.DocType, &d.Timestamp, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &d.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal document metadata: %w", err)
			}
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &d.Embedding); err != nil {
				return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
			}
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

// DeleteDocumentsOlderThan removes documents older than cutoff and returns
// the number removed.
func (s *Store) DeleteDocumentsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted documents: %w", err)
	}
	return int(n), nil
}

// SaveMessage appends a message to a session.
func (s *Store) SaveMessage(ctx context.Context, sessionID string, msg types.Message) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session ID is required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// RecentMessages returns the last n messages for a session in chronological
// order.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, n int) ([]types.Message, error) {
	if n < 1 {
		return nil, nil
	}

	// Fetch newest-first with a limit, then reverse into chronological order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, timestamp FROM messages
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reversed []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		reversed = append(reversed, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgs := make([]types.Message, len(reversed))
	for i, m := range reversed {
		msgs[len(reversed)-1-i] = m
	}
	return msgs, nil
}

// Sessions returns the IDs of all sessions with at least one message.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM messages ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// marshalJSON marshals a non-empty map to JSON, returning NULL-able nil for
// empty input.
func marshalJSON[M ~map[string]V, V any](m M) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

// requireAffected converts a zero-row result into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
