// Package mistral implements the Mistral chat completions adapter
// (spec §4.2.7). Mistral's wire format is OpenAI Chat Completions-compatible
// plus a small set of Mistral-exclusive fields; this package reuses the
// openai package's schema and conversion logic for everything else.
package mistral

import "github.com/davincible/llm-router-go/internal/providers/openai"

// Request embeds the OpenAI Chat Completions schema and adds the
// Mistral-exclusive fields that distinguish it from a plain OpenAI request
// at detection time.
type Request struct {
	openai.ChatRequest

	SafePrompt *bool  `json:"safe_prompt,omitempty"`
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

// Response is structurally identical to OpenAI's Chat Completions response;
// Mistral does not add response-side exclusive fields.
type Response = openai.ChatResponse
