package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/embedding"
	"github.com/mertcetin/docbase/internal/rag"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rag.ErrEmptyUpload), errors.Is(err, rag.ErrBlankQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, document.ErrMalformed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, vectorstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, vectorstore.ErrInvalidVector), errors.Is(err, embedding.ErrDimensionMismatch):
		status = http.StatusInternalServerError
	case errors.Is(err, embedding.ErrUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, vectorstore.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
