package rag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/models"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

// ErrEmptyUpload means the upload carried zero bytes. It is rejected before
// extraction starts.
var ErrEmptyUpload = errors.New("empty upload")

// Embedder is the slice of the embedding service the RAG flows need.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// Ingestor turns an uploaded document into a persisted Document plus one
// embedded TextChunk per non-blank page, written as a single atomic batch.
type Ingestor struct {
	extractor document.Extractor
	embedder  Embedder
	store     vectorstore.Store
}

func NewIngestor(extractor document.Extractor, embedder Embedder, store vectorstore.Store) *Ingestor {
	return &Ingestor{extractor: extractor, embedder: embedder, store: store}
}

type IngestRequest struct {
	// DocumentID may be preassigned by the caller (the async queue path
	// hands the ID back before the worker runs). Zero means generate one.
	DocumentID  uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Ingest runs the full pipeline: extract, embed, persist. Any failure leaves
// nothing behind; a document with zero non-blank pages still ingests as a
// Document with zero chunks.
func (ing *Ingestor) Ingest(ctx context.Context, req IngestRequest) (uuid.UUID, error) {
	if req.Size == 0 {
		return uuid.Nil, ErrEmptyUpload
	}

	data, err := io.ReadAll(req.Data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return uuid.Nil, ErrEmptyUpload
	}

	docID := req.DocumentID
	if docID == uuid.Nil {
		docID = uuid.New()
	}
	doc := models.Document{
		ID:            docID,
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		FileSizeBytes: int64(len(data)),
		UploadedAt:    time.Now().UTC(),
	}

	pages, err := ing.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}

	chunks := make([]models.TextChunk, len(pages))
	texts := make([]string, len(pages))
	for i, p := range pages {
		chunks[i] = models.TextChunk{
			ID:             uuid.New(),
			DocumentID:     docID,
			Content:        p.Text,
			PageNumber:     p.Number,
			EmbeddingModel: ing.embedder.Model(),
			EmbeddingDim:   ing.embedder.Dimensions(),
		}
		texts[i] = p.Text
	}

	if len(texts) > 0 {
		vectors, err := ing.embedder.EmbedAll(ctx, texts)
		if err != nil {
			return uuid.Nil, fmt.Errorf("embed %s: %w", req.Filename, err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	if err := ing.store.InsertDocument(ctx, doc, chunks); err != nil {
		return uuid.Nil, fmt.Errorf("persist %s: %w", req.Filename, err)
	}

	slog.Info("document ingested",
		"document_id", docID,
		"filename", req.Filename,
		"pages", len(chunks),
		"bytes", len(data),
	)
	return docID, nil
}
