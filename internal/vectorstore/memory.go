package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mertcetin/docbase/internal/models"
)

// MemoryStore is a brute-force in-memory Store. It backs tests and
// database-less development runs; the linear scan matches the exact L2
// semantics of PgStore.
type MemoryStore struct {
	mu     sync.RWMutex
	dims   int
	docs   map[uuid.UUID]models.Document
	order  []uuid.UUID // insertion order of documents
	chunks []models.TextChunk
}

func NewMemoryStore(dims int) *MemoryStore {
	return &MemoryStore{
		dims: dims,
		docs: make(map[uuid.UUID]models.Document),
	}
}

func (s *MemoryStore) InsertDocument(ctx context.Context, doc models.Document, chunks []models.TextChunk) error {
	if err := validateChunks(chunks, s.dims); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("%w: document %s already exists", ErrUnavailable, doc.ID)
	}

	// Everything lands under one lock, so a concurrent NearestChunks sees
	// the whole chunk set or none of it.
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	for _, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *MemoryStore) NearestChunks(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, store expects %d",
			ErrInvalidVector, len(vector), s.dims)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]models.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		scored = append(scored, models.ScoredChunk{
			TextChunk: c,
			Distance:  l2Distance(vector, c.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].ID.String() < scored[j].ID.String()
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first, mirroring the SQL ordering.
	var docs []models.Document
	for i := len(s.order) - 1; i >= 0; i-- {
		docs = append(docs, s.docs[s.order[i]])
	}

	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *MemoryStore) CountChunks(ctx context.Context, documentID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
