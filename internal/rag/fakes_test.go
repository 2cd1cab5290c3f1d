package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/embedding"
)

type fakeExtractor struct {
	pages []document.Page
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, data io.ReaderAt, size int64) ([]document.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// fakeEmbedder maps each text to a deterministic vector. Set fail to make
// every call return EmbeddingUnavailable.
type fakeEmbedder struct {
	dims    int
	fail    bool
	queries []string
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims}
}

func (f *fakeEmbedder) Model() string   { return "fake-embedder" }
func (f *fakeEmbedder) Dimensions() int { return f.dims }

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("%w: fake transport error", embedding.ErrUnavailable)
	}
	f.queries = append(f.queries, text)
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("%w: fake transport error", embedding.ErrUnavailable)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	vec := make([]float32, f.dims)
	for i, b := range []byte(text) {
		vec[i%f.dims] += float32(b)
	}
	return vec
}

type fakeGenerator struct {
	answer   string
	err      error
	called   bool
	question string
	context  string
}

func (f *fakeGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	f.called = true
	f.question = question
	f.context = contextText
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return fmt.Errorf("cache miss: %s", key)
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}
