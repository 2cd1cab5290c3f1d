package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mertcetin/docbase/internal/models"
)

// PgStore keeps documents and text_chunks in Postgres and orders
// nearest-neighbor queries with the pgvector `<->` (L2 distance) operator.
type PgStore struct {
	db   *pgxpool.Pool
	dims int
}

func NewPgStore(db *pgxpool.Pool, dims int) *PgStore {
	return &PgStore{db: db, dims: dims}
}

func (s *PgStore) InsertDocument(ctx context.Context, doc models.Document, chunks []models.TextChunk) error {
	if err := validateChunks(chunks, s.dims); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, filename, content_type, file_size_bytes, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.Filename, doc.ContentType, doc.FileSizeBytes, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert document: %v", ErrUnavailable, err)
	}

	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO text_chunks (id, document_id, content, page_number, embedding, embedding_model, embedding_dim)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.DocumentID, c.Content, c.PageNumber,
			pgvector.NewVector(c.Embedding), c.EmbeddingModel, c.EmbeddingDim,
		)
		if err != nil {
			return fmt.Errorf("%w: insert chunk page %d: %v", ErrUnavailable, c.PageNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PgStore) NearestChunks(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, store expects %d",
			ErrInvalidVector, len(vector), s.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	embedding := pgvector.NewVector(vector)

	// Secondary sort on id keeps equal-distance results deterministic.
	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, content, page_number, embedding_model, embedding_dim,
		        embedding <-> $1 AS distance
		 FROM text_chunks
		 ORDER BY embedding <-> $1, id
		 LIMIT $2`,
		embedding, k,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest chunks: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var results []models.ScoredChunk
	for rows.Next() {
		var r models.ScoredChunk
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Content, &r.PageNumber,
			&r.EmbeddingModel, &r.EmbeddingDim, &r.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", ErrUnavailable, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read chunks: %v", ErrUnavailable, err)
	}
	return results, nil
}

func (s *PgStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT id, filename, content_type, file_size_bytes, uploaded_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.FileSizeBytes, &doc.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document: %v", ErrUnavailable, err)
	}
	return &doc, nil
}

func (s *PgStore) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, filename, content_type, file_size_bytes, uploaded_at
		 FROM documents ORDER BY uploaded_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.ContentType, &d.FileSizeBytes, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", ErrUnavailable, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PgStore) CountChunks(ctx context.Context, documentID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT count(*) FROM text_chunks WHERE document_id = $1", documentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count chunks: %v", ErrUnavailable, err)
	}
	return n, nil
}
