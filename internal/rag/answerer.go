package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mertcetin/docbase/internal/config"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

// ErrBlankQuestion is returned for whitespace-only questions when the blank
// question policy is "reject".
var ErrBlankQuestion = errors.New("blank question")

// NoInformationAnswer is the fixed response when retrieval finds nothing.
// The generator is never invoked in that case.
const NoInformationAnswer = "Sorry, I could not find any information to answer that question."

const contextSeparator = "\n---\n"

// AnswerGenerator produces the final answer text from question + context.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// AnswerCache stores generated answers keyed by question. A nil cache
// disables caching.
type AnswerCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Answerer is the retrieval engine: it embeds the question, pulls the top-K
// nearest chunks from the store, and hands question + context to the
// generator.
type Answerer struct {
	embedder    Embedder
	store       vectorstore.Store
	generator   AnswerGenerator
	cache       AnswerCache
	topK        int
	blankPolicy string
	cacheTTL    time.Duration
}

func NewAnswerer(embedder Embedder, store vectorstore.Store, generator AnswerGenerator, cfg config.RetrievalConfig) *Answerer {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	policy := cfg.BlankQuestionPolicy
	if policy == "" {
		policy = config.BlankQuestionNoInfo
	}
	return &Answerer{
		embedder:    embedder,
		store:       store,
		generator:   generator,
		topK:        topK,
		blankPolicy: policy,
		cacheTTL:    cfg.AnswerCacheTTL,
	}
}

// WithCache enables answer caching.
func (a *Answerer) WithCache(cache AnswerCache) *Answerer {
	a.cache = cache
	return a
}

// Answer never fails for generator problems: those degrade to a descriptive
// answer string so the caller always gets a response.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		if a.blankPolicy == config.BlankQuestionReject {
			return "", ErrBlankQuestion
		}
		return NoInformationAnswer, nil
	}

	cacheKey := answerCacheKey(question)
	if a.cache != nil {
		var cached string
		if err := a.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
			slog.Debug("answer cache hit", "key", cacheKey)
			return cached, nil
		}
	}

	vector, err := a.embedder.EmbedText(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	chunks, err := a.store.NearestChunks(ctx, vector, a.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}
	if len(chunks) == 0 {
		return NoInformationAnswer, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	contextText := strings.Join(texts, contextSeparator)

	answer, err := a.generator.Generate(ctx, question, contextText)
	if err != nil {
		slog.Warn("answer generation degraded", "error", err)
		return fmt.Sprintf("The answer could not be generated: %v", err), nil
	}

	if a.cache != nil && a.cacheTTL > 0 {
		if err := a.cache.Set(ctx, cacheKey, answer, a.cacheTTL); err != nil {
			slog.Warn("answer cache write failed", "error", err)
		}
	}
	return answer, nil
}

func answerCacheKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return "answer:" + hex.EncodeToString(sum[:])
}
