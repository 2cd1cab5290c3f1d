package rag

import (
	"context"
	"fmt"

	"github.com/mertcetin/docbase/internal/llm"
)

// ChatClient is the slice of llm.Gateway the generator uses.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Generator produces the final answer from a question and the retrieved
// context. Upstream failures surface as errors here; the Answerer converts
// them into a degraded text response so the request never fails outright.
type Generator struct {
	chat     ChatClient
	provider string
	model    string
}

func NewGenerator(chat ChatClient, provider, model string) *Generator {
	return &Generator{chat: chat, provider: provider, model: model}
}

const systemPrompt = `You are a knowledge-base assistant. Answer the user's question using only the provided context. If the context does not contain the answer, say that you do not know.`

func (g *Generator) Generate(ctx context.Context, question, contextText string) (string, error) {
	resp, err := g.chat.Chat(ctx, llm.ChatRequest{
		Provider: g.provider,
		Model:    g.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Content, nil
}
