package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mertcetin/docbase/internal/models"
)

// ErrInvalidVector means an embedding's length does not match the store's
// configured dimensionality. It is raised at insert time, never at query time.
var ErrInvalidVector = errors.New("invalid vector")

// ErrUnavailable means the persistence layer failed. Nothing partial is
// retained when it is returned from InsertDocument.
var ErrUnavailable = errors.New("vector store unavailable")

// ErrNotFound is returned by document lookups for unknown IDs.
var ErrNotFound = errors.New("document not found")

// Store persists documents with their chunks and serves exact
// nearest-neighbor queries over chunk embeddings.
//
// InsertDocument writes the document and all of its chunks as one atomic
// unit: a concurrent NearestChunks call sees either the whole chunk set or
// none of it. Chunks must arrive in ascending page order and are persisted in
// that order.
//
// NearestChunks returns up to k chunks ordered by ascending L2 distance to
// the query vector, ties broken by chunk ID. An empty store yields an empty
// slice and no error. The linear-scan and pgvector implementations are
// interchangeable behind this method, so an approximate index can be swapped
// in without touching callers.
type Store interface {
	InsertDocument(ctx context.Context, doc models.Document, chunks []models.TextChunk) error
	NearestChunks(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error)
	CountChunks(ctx context.Context, documentID uuid.UUID) (int, error)
}

func validateChunks(chunks []models.TextChunk, dims int) error {
	for _, c := range chunks {
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store expects %d",
				ErrInvalidVector, c.ID, len(c.Embedding), dims)
		}
	}
	return nil
}
