package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mertcetin/docbase/internal/rag"
)

type AskHandler struct {
	answerer *rag.Answerer
}

func NewAskHandler(answerer *rag.Answerer) *AskHandler {
	return &AskHandler{answerer: answerer}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}
