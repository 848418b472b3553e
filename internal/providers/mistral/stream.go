package mistral

import (
	"github.com/davincible/llm-router-go/internal/providers/openai"
	"github.com/davincible/llm-router-go/internal/universal"
)

// StreamState reuses the OpenAI Chat Completions stream state since
// Mistral's SSE chunk shape is identical.
type StreamState struct {
	inner openai.ChatStreamState
}

func (s *StreamState) Reset() { s.inner.Reset() }

func StreamToUniversal(frame []byte) (universal.UniversalStreamChunk, error) {
	return openai.ChatStreamToUniversal(frame)
}

func StreamFromUniversal(chunk universal.UniversalStreamChunk) ([]byte, error) {
	return openai.ChatStreamFromUniversal(chunk)
}
