package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // Postgres driver
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/codelegend/cogito/internal/llm"
	"github.com/codelegend/cogito/internal/storage"
	"github.com/codelegend/cogito/pkg/types"
)

// PostgresIndex implements Index on Postgres with the pgvector extension.
// Nearest-neighbor queries use the cosine distance operator (<=>); stored
// similarity is 1 - distance, matching the in-memory index.
type PostgresIndex struct {
	db       *sql.DB
	embedder llm.EmbeddingGenerator
	chunker  *Chunker
	dims     int
}

var _ Index = (*PostgresIndex)(nil)

// NewPostgresIndex opens the database, enables the pgvector extension, and
// creates the documents table with an embedding column of dims dimensions.
func NewPostgresIndex(dsn string, embedder llm.EmbeddingGenerator, dims int) (*PostgresIndex, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", storage.ErrInvalidInput)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pgvector extension not available: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS vector_documents (
			id        TEXT PRIMARY KEY,
			content   TEXT NOT NULL,
			metadata  JSONB NOT NULL DEFAULT '{}',
			doc_type  TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			embedding vector(%d)
		)`, dims)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresIndex{
		db:       db,
		embedder: embedder,
		chunker:  NewChunker(),
		dims:     dims,
	}, nil
}

// Close releases the underlying database handle.
func (p *PostgresIndex) Close() error {
	return p.db.Close()
}

// Add embeds content and inserts it, chunking long content the same way
// the in-memory index does.
func (p *PostgresIndex) Add(ctx context.Context, content, docType string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content is required", storage.ErrInvalidInput)
	}
	if !types.IsValidDocType(docType) {
		return "", fmt.Errorf("%w: unknown document type %q", storage.ErrInvalidInput, docType)
	}

	docID := "doc:" + uuid.NewString()
	chunks := p.chunker.Chunk(content)
	now := time.Now().UTC()

	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("failed to embed content: %w", err)
		}

		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta["doc_id"] = docID
		if len(chunks) > 1 {
			meta["chunk_index"] = fmt.Sprintf("%d", i)
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}

		id := docID
		if len(chunks) > 1 {
			id = fmt.Sprintf("%s#%d", docID, i)
		}

		_, err = p.db.ExecContext(ctx, `
			INSERT INTO vector_documents (id, content, metadata, doc_type, timestamp, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, chunk, metaJSON, docType, now, pgvector.NewVector(embedding))
		if err != nil {
			return "", fmt.Errorf("failed to insert document: %w", err)
		}
	}

	return docID, nil
}

// Search embeds the query and runs a cosine nearest-neighbor query.
func (p *PostgresIndex) Search(ctx context.Context, query string, topK int, filter map[string]string) ([]Match, error) {
	if topK < 1 {
		return nil, nil
	}

	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	args := []any{pgvector.NewVector(queryVec), topK}
	where := "embedding IS NOT NULL"
	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter: %w", err)
		}
		where += " AND metadata @> $3"
		args = append(args, filterJSON)
	}

	querySQL := fmt.Sprintf(`
		SELECT id, content, metadata, doc_type, timestamp,
		       1 - (embedding <=> $1) AS similarity
		FROM vector_documents
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $2`, where)

	rows, err := p.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []Match
	for rows.Next() {
		var (
			doc      types.Document
			metaJSON []byte
			sim      float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metaJSON, &doc.DocType, &doc.Timestamp, &sim); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		matches = append(matches, Match{Document: doc, Similarity: sim})
	}
	return matches, rows.Err()
}

// DeleteOlderThan removes documents older than cutoff.
func (p *PostgresIndex) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM vector_documents WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted documents: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored chunks.
func (p *PostgresIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vector_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
