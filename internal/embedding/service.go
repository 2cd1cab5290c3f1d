package embedding

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mertcetin/docbase/internal/llm"
)

// ErrUnavailable means the upstream embedding call failed (network, auth,
// quota). Callers treat it as terminal for the current ingestion or query.
var ErrUnavailable = errors.New("embedding provider unavailable")

// ErrDimensionMismatch means the provider returned a vector whose length does
// not match the configured dimensionality.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

const batchSize = 100

// Service converts text into fixed-dimensionality vectors through an LLM
// gateway. All vectors it hands out have exactly Dimensions() entries.
type Service struct {
	gateway  llm.Gateway
	provider string
	model    string
	dims     int
	workers  int
}

func NewService(gw llm.Gateway, provider, model string, dims, workers int) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if workers <= 0 {
		workers = 1
	}
	return &Service{gateway: gw, provider: provider, model: model, dims: dims, workers: workers}
}

func (s *Service) Model() string   { return s.model }
func (s *Service) Dimensions() int { return s.dims }

// EmbedText embeds a single string.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrUnavailable)
	}
	return vecs[0], nil
}

// EmbedAll embeds every input text and returns the vectors in input order.
// Batches run with bounded concurrency; any failure aborts the whole call.
func (s *Service) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		g.Go(func() error {
			vecs, err := s.embedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("%w: got %d embeddings for %d texts", ErrUnavailable, len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
		Provider: s.provider,
		Model:    s.model,
		Input:    texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, vec := range resp.Embeddings {
		if len(vec) != s.dims {
			return nil, fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
				ErrDimensionMismatch, s.model, len(vec), s.dims)
		}
	}
	return resp.Embeddings, nil
}
