package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mertcetin/docbase/internal/config"
	"github.com/mertcetin/docbase/internal/queue"
	"github.com/mertcetin/docbase/internal/rag"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

type DocumentHandler struct {
	ingestor *rag.Ingestor
	store    vectorstore.Store
	queue    *queue.Client
	cfg      config.IngestConfig
}

func NewDocumentHandler(ingestor *rag.Ingestor, store vectorstore.Store, qc *queue.Client, cfg config.IngestConfig) *DocumentHandler {
	return &DocumentHandler{ingestor: ingestor, store: store, queue: qc, cfg: cfg}
}

// Upload ingests a document synchronously and returns its ID.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	docID, err := h.ingestor.Ingest(r.Context(), rag.IngestRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"document_id": docID.String()})
}

// UploadAsync spools the file to disk, enqueues an ingest task, and returns
// the preassigned document ID with 202.
func (h *DocumentHandler) UploadAsync(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async ingestion not configured"})
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeError(w, rag.ErrEmptyUpload)
		return
	}

	docID := uuid.New()
	spoolPath := filepath.Join(h.cfg.SpoolDir, fmt.Sprintf("upload-%s.pdf", docID))

	spool, err := os.Create(spoolPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "spool upload failed"})
		return
	}
	if _, err := io.Copy(spool, file); err != nil {
		spool.Close()
		os.Remove(spoolPath)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "spool upload failed"})
		return
	}
	spool.Close()

	err = h.queue.EnqueueDocumentIngest(queue.DocumentIngestPayload{
		DocumentID:  docID.String(),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		SpoolPath:   spoolPath,
	})
	if err != nil {
		os.Remove(spoolPath)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "enqueue ingest failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"document_id": docID.String()})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document id"})
		return
	}

	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	chunkCount, err := h.store.CountChunks(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"chunks":   chunkCount,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	docs, err := h.store.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}
