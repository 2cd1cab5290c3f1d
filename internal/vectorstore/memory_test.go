package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcetin/docbase/internal/models"
)

func newDoc(filename string) models.Document {
	return models.Document{
		ID:            uuid.New(),
		Filename:      filename,
		ContentType:   "application/pdf",
		FileSizeBytes: 1024,
		UploadedAt:    time.Now().UTC(),
	}
}

func newChunk(docID uuid.UUID, page int, content string, embedding []float32) models.TextChunk {
	return models.TextChunk{
		ID:         uuid.New(),
		DocumentID: docID,
		Content:    content,
		PageNumber: page,
		Embedding:  embedding,
	}
}

func TestInsertDocument_RejectsDimensionMismatch(t *testing.T) {
	store := NewMemoryStore(3)
	doc := newDoc("a.pdf")

	err := store.InsertDocument(context.Background(), doc, []models.TextChunk{
		newChunk(doc.ID, 1, "text", []float32{1, 2}),
	})
	require.ErrorIs(t, err, ErrInvalidVector)

	// Nothing of the failed insert is visible.
	_, err = store.GetDocument(context.Background(), doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertDocument_RejectsNilEmbedding(t *testing.T) {
	store := NewMemoryStore(3)
	doc := newDoc("a.pdf")

	err := store.InsertDocument(context.Background(), doc, []models.TextChunk{
		newChunk(doc.ID, 1, "text", nil),
	})
	require.ErrorIs(t, err, ErrInvalidVector)
}

func TestNearestChunks_EmptyStore(t *testing.T) {
	store := NewMemoryStore(3)

	results, err := store.NearestChunks(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNearestChunks_QueryDimensionMismatch(t *testing.T) {
	store := NewMemoryStore(3)

	_, err := store.NearestChunks(context.Background(), []float32{1, 0}, 5)
	require.ErrorIs(t, err, ErrInvalidVector)
}

func TestNearestChunks_OrderedByDistance(t *testing.T) {
	store := NewMemoryStore(2)
	doc := newDoc("a.pdf")

	chunks := []models.TextChunk{
		newChunk(doc.ID, 1, "far", []float32{10, 0}),
		newChunk(doc.ID, 2, "near", []float32{1, 0}),
		newChunk(doc.ID, 3, "mid", []float32{5, 0}),
	}
	require.NoError(t, store.InsertDocument(context.Background(), doc, chunks))

	results, err := store.NearestChunks(context.Background(), []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near", results[0].Content)
	assert.Equal(t, "mid", results[1].Content)
	assert.Equal(t, "far", results[2].Content)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
}

func TestNearestChunks_ExactMatchRanksFirst(t *testing.T) {
	store := NewMemoryStore(3)
	doc := newDoc("a.pdf")

	target := []float32{0.5, -0.25, 1}
	chunks := []models.TextChunk{
		newChunk(doc.ID, 1, "other", []float32{3, 3, 3}),
		newChunk(doc.ID, 2, "exact", target),
	}
	require.NoError(t, store.InsertDocument(context.Background(), doc, chunks))

	results, err := store.NearestChunks(context.Background(), target, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact", results[0].Content)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
	assert.Greater(t, results[1].Distance, 0.0)
}

func TestNearestChunks_TiesBrokenByChunkID(t *testing.T) {
	store := NewMemoryStore(2)
	doc := newDoc("a.pdf")

	// Identical embeddings: ordering must fall back to chunk ID.
	chunks := []models.TextChunk{
		newChunk(doc.ID, 1, "one", []float32{1, 1}),
		newChunk(doc.ID, 2, "two", []float32{1, 1}),
		newChunk(doc.ID, 3, "three", []float32{1, 1}),
	}
	require.NoError(t, store.InsertDocument(context.Background(), doc, chunks))

	first, err := store.NearestChunks(context.Background(), []float32{0, 0}, 3)
	require.NoError(t, err)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID.String(), first[i].ID.String())
	}
}

func TestNearestChunks_Idempotent(t *testing.T) {
	store := NewMemoryStore(2)
	doc := newDoc("a.pdf")

	var chunks []models.TextChunk
	for i := 1; i <= 5; i++ {
		chunks = append(chunks, newChunk(doc.ID, i, fmt.Sprintf("page %d", i), []float32{float32(i), 0}))
	}
	require.NoError(t, store.InsertDocument(context.Background(), doc, chunks))

	query := []float32{2.5, 0}
	first, err := store.NearestChunks(context.Background(), query, 3)
	require.NoError(t, err)

	second, err := store.NearestChunks(context.Background(), query, 3)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Distance, second[i].Distance)
	}
}

func TestNearestChunks_CapsAtK(t *testing.T) {
	store := NewMemoryStore(1)
	doc := newDoc("a.pdf")

	var chunks []models.TextChunk
	for i := 1; i <= 10; i++ {
		chunks = append(chunks, newChunk(doc.ID, i, "c", []float32{float32(i)}))
	}
	require.NoError(t, store.InsertDocument(context.Background(), doc, chunks))

	results, err := store.NearestChunks(context.Background(), []float32{0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = store.NearestChunks(context.Background(), []float32{0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInsertDocument_DuplicateID(t *testing.T) {
	store := NewMemoryStore(1)
	doc := newDoc("a.pdf")

	require.NoError(t, store.InsertDocument(context.Background(), doc, nil))
	err := store.InsertDocument(context.Background(), doc, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNearestChunks_NoTornReads(t *testing.T) {
	store := NewMemoryStore(1)

	const docs = 20
	const chunksPerDoc = 5

	var wg sync.WaitGroup
	for i := 0; i < docs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := newDoc("a.pdf")
			var chunks []models.TextChunk
			for p := 1; p <= chunksPerDoc; p++ {
				chunks = append(chunks, newChunk(doc.ID, p, "c", []float32{1}))
			}
			_ = store.InsertDocument(context.Background(), doc, chunks)
		}()
	}

	// Readers must always observe whole chunk sets: counts are multiples of 5.
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	for {
		select {
		case <-done:
			results, err := store.NearestChunks(context.Background(), []float32{0}, docs*chunksPerDoc)
			require.NoError(t, err)
			assert.Len(t, results, docs*chunksPerDoc)
			return
		default:
			results, err := store.NearestChunks(context.Background(), []float32{0}, docs*chunksPerDoc)
			require.NoError(t, err)
			assert.Zero(t, len(results)%chunksPerDoc)
		}
	}
}

func TestListDocuments_NewestFirstWithPaging(t *testing.T) {
	store := NewMemoryStore(1)

	first := newDoc("first.pdf")
	second := newDoc("second.pdf")
	third := newDoc("third.pdf")
	for _, d := range []models.Document{first, second, third} {
		require.NoError(t, store.InsertDocument(context.Background(), d, nil))
	}

	docs, err := store.ListDocuments(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "third.pdf", docs[0].Filename)
	assert.Equal(t, "second.pdf", docs[1].Filename)

	docs, err = store.ListDocuments(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first.pdf", docs[0].Filename)

	docs, err = store.ListDocuments(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCountChunks(t *testing.T) {
	store := NewMemoryStore(1)
	doc := newDoc("a.pdf")
	other := newDoc("b.pdf")

	require.NoError(t, store.InsertDocument(context.Background(), doc, []models.TextChunk{
		newChunk(doc.ID, 1, "a", []float32{1}),
		newChunk(doc.ID, 2, "b", []float32{2}),
	}))
	require.NoError(t, store.InsertDocument(context.Background(), other, nil))

	n, err := store.CountChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.CountChunks(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
