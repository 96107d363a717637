// Package provider defines the LLM contract consumed by the retrieval
// pipeline: text generation (answering, relevance scoring) and embedding.
package provider

import "context"

// LLMProvider is implemented by concrete model clients. Both calls are
// blocking; cancellation and timeouts are the caller's responsibility via ctx.
type LLMProvider interface {
	// Generate produces a completion for the prompt using the named model.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// Embed maps each input text to a fixed-length vector.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
