package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcetin/docbase/internal/config"
	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/rag"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

const testDims = 4

type stubExtractor struct {
	pages []document.Page
	err   error
}

func (s *stubExtractor) Extract(ctx context.Context, data io.ReaderAt, size int64) ([]document.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pages, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Model() string   { return "stub" }
func (stubEmbedder) Dimensions() int { return testDims }

func (stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, testDims), nil
}

func (stubEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, testDims)
	}
	return out, nil
}

type stubGenerator struct {
	answer string
}

func (s *stubGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	return s.answer, nil
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newDocumentHandler(extractor document.Extractor, store vectorstore.Store) *DocumentHandler {
	ingestor := rag.NewIngestor(extractor, stubEmbedder{}, store)
	return NewDocumentHandler(ingestor, store, nil, config.IngestConfig{MaxUploadBytes: 32 << 20})
}

func TestUpload_Success(t *testing.T) {
	store := vectorstore.NewMemoryStore(testDims)
	h := newDocumentHandler(&stubExtractor{pages: []document.Page{{Number: 1, Text: "Alpha content"}}}, store)

	body, contentType := multipartBody(t, "report.pdf", "%PDF-fake")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	docID, err := uuid.Parse(resp["document_id"])
	require.NoError(t, err)

	n, err := store.CountChunks(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpload_EmptyFile(t *testing.T) {
	h := newDocumentHandler(&stubExtractor{}, vectorstore.NewMemoryStore(testDims))

	body, contentType := multipartBody(t, "empty.pdf", "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_MalformedDocument(t *testing.T) {
	h := newDocumentHandler(&stubExtractor{err: document.ErrMalformed}, vectorstore.NewMemoryStore(testDims))

	body, contentType := multipartBody(t, "bad.pdf", "garbage")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpload_MissingFile(t *testing.T) {
	h := newDocumentHandler(&stubExtractor{}, vectorstore.NewMemoryStore(testDims))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAsync_QueueNotConfigured(t *testing.T) {
	h := newDocumentHandler(&stubExtractor{}, vectorstore.NewMemoryStore(testDims))

	body, contentType := multipartBody(t, "report.pdf", "%PDF-fake")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/async", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadAsync(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func newAskHandler(store vectorstore.Store, answer string) *AskHandler {
	answerer := rag.NewAnswerer(stubEmbedder{}, store, &stubGenerator{answer: answer}, config.RetrievalConfig{
		TopK:                3,
		BlankQuestionPolicy: config.BlankQuestionNoInfo,
	})
	return NewAskHandler(answerer)
}

func TestAsk_EmptyStoreAnswersNoInformation(t *testing.T) {
	h := newAskHandler(vectorstore.NewMemoryStore(testDims), "unused")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"what is alpha?"}`))
	rec := httptest.NewRecorder()

	h.Ask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rag.NoInformationAnswer, resp.Answer)
}

func TestAsk_InvalidBody(t *testing.T) {
	h := newAskHandler(vectorstore.NewMemoryStore(testDims), "unused")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
