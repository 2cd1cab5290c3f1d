package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Filename      string    `json:"filename" db:"filename"`
	ContentType   string    `json:"content_type" db:"content_type"`
	FileSizeBytes int64     `json:"file_size_bytes" db:"file_size_bytes"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// TextChunk is one non-blank page of an ingested document together with its
// embedding. Chunks are written once during ingestion and never mutated.
type TextChunk struct {
	ID             uuid.UUID `json:"id" db:"id"`
	DocumentID     uuid.UUID `json:"document_id" db:"document_id"`
	Content        string    `json:"content" db:"content"`
	PageNumber     int       `json:"page_number" db:"page_number"`
	Embedding      []float32 `json:"-" db:"embedding"`
	EmbeddingModel string    `json:"embedding_model,omitempty" db:"embedding_model"`
	EmbeddingDim   int       `json:"embedding_dim,omitempty" db:"embedding_dim"`
}

// ScoredChunk is a TextChunk returned by a nearest-neighbor query, annotated
// with its L2 distance to the query vector.
type ScoredChunk struct {
	TextChunk
	Distance float64 `json:"distance"`
}
