package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/queue"
	"github.com/mertcetin/docbase/internal/rag"
)

// IngestWorker runs the same ingestion pipeline as the synchronous upload
// path, reading the spooled file the API wrote at enqueue time.
type IngestWorker struct {
	ingestor *rag.Ingestor
}

func NewIngestWorker(ingestor *rag.Ingestor) *IngestWorker {
	return &IngestWorker{ingestor: ingestor}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	slog.Info("ingesting document", "document_id", docID, "filename", payload.Filename)

	f, err := os.Open(payload.SpoolPath)
	if err != nil {
		return fmt.Errorf("open spooled upload: %w", err)
	}
	defer f.Close()

	_, err = w.ingestor.Ingest(ctx, rag.IngestRequest{
		DocumentID:  docID,
		Filename:    payload.Filename,
		ContentType: payload.ContentType,
		Size:        payload.Size,
		Data:        f,
	})
	if err != nil {
		// Malformed and empty uploads will never succeed; skip retries.
		if errors.Is(err, document.ErrMalformed) || errors.Is(err, rag.ErrEmptyUpload) {
			slog.Error("unprocessable upload, dropping task", "document_id", docID, "error", err)
			removeSpool(payload.SpoolPath)
			return nil
		}
		return fmt.Errorf("ingest document %s: %w", docID, err)
	}

	removeSpool(payload.SpoolPath)
	return nil
}

func removeSpool(path string) {
	if err := os.Remove(path); err != nil {
		slog.Warn("remove spooled upload failed", "path", path, "error", err)
	}
}
