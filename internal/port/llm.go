package port

import "context"

// LLMProvider abstracts the chat-completion backend used for section drafting.
// Implementations can target ProxyAPI, OpenAI, or any compatible endpoint.
type LLMProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Complete sends a system and user prompt pair and returns the model's
	// answer. One request, one response: no retries, no streaming.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
