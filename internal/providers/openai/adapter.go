package openai

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// ChatAdapter implements providers.Adapter for OpenAI Chat Completions.
type ChatAdapter struct{}

func NewChatAdapter() *ChatAdapter { return &ChatAdapter{} }

func (a *ChatAdapter) Format() universal.ProviderFormat { return universal.FormatOpenAIChat }

func (a *ChatAdapter) DetectRequest(payload []byte) bool { return DetectRequest(payload) }

func (a *ChatAdapter) RequestToUniversal(payload []byte) (universal.UniversalRequest, error) {
	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("unmarshal chat completions request: %w", err)
	}

	return RequestToUniversal(req)
}

func (a *ChatAdapter) RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	return RequestFromUniversal(req)
}

func (a *ChatAdapter) DetectResponse(payload []byte) bool { return DetectResponse(payload) }

func (a *ChatAdapter) ResponseToUniversal(payload []byte) (universal.UniversalResponse, error) {
	var resp ChatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return universal.UniversalResponse{}, fmt.Errorf("unmarshal chat completions response: %w", err)
	}

	return ResponseToUniversal(resp)
}

func (a *ChatAdapter) ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	return ResponseFromUniversal(resp)
}

func (a *ChatAdapter) NewStreamState() providers.StreamState { return &ChatStreamState{} }

func (a *ChatAdapter) DetectStreamResponse(frame []byte) bool { return DetectChatStreamFrame(frame) }

func (a *ChatAdapter) StreamToUniversal(frame []byte, _ providers.StreamState) (universal.UniversalStreamChunk, error) {
	return ChatStreamToUniversal(frame)
}

func (a *ChatAdapter) StreamFromUniversal(chunk universal.UniversalStreamChunk, _ providers.StreamState) ([]byte, error) {
	return ChatStreamFromUniversal(chunk)
}

// ResponsesAdapter implements providers.Adapter for the OpenAI Responses
// API.
type ResponsesAdapter struct{}

func NewResponsesAdapter() *ResponsesAdapter { return &ResponsesAdapter{} }

func (a *ResponsesAdapter) Format() universal.ProviderFormat { return universal.FormatResponses }

func (a *ResponsesAdapter) DetectRequest(payload []byte) bool { return DetectResponsesRequest(payload) }

func (a *ResponsesAdapter) RequestToUniversal(payload []byte) (universal.UniversalRequest, error) {
	var req ResponsesRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("unmarshal responses request: %w", err)
	}

	return ResponsesRequestToUniversal(req)
}

func (a *ResponsesAdapter) RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	return ResponsesRequestFromUniversal(req)
}

func (a *ResponsesAdapter) DetectResponse(payload []byte) bool { return DetectResponsesResponse(payload) }

func (a *ResponsesAdapter) ResponseToUniversal(payload []byte) (universal.UniversalResponse, error) {
	var resp ResponsesResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return universal.UniversalResponse{}, fmt.Errorf("unmarshal responses response: %w", err)
	}

	return ResponsesResponseToUniversal(resp)
}

func (a *ResponsesAdapter) ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	return ResponsesResponseFromUniversal(resp)
}

func (a *ResponsesAdapter) NewStreamState() providers.StreamState { return &ResponsesStreamState{} }

func (a *ResponsesAdapter) DetectStreamResponse(frame []byte) bool {
	return DetectResponsesStreamFrame(frame)
}

func (a *ResponsesAdapter) StreamToUniversal(frame []byte, state providers.StreamState) (universal.UniversalStreamChunk, error) {
	return ResponsesStreamToUniversal(frame, state.(*ResponsesStreamState))
}

func (a *ResponsesAdapter) StreamFromUniversal(chunk universal.UniversalStreamChunk, state providers.StreamState) ([]byte, error) {
	return ResponsesStreamFromUniversal(chunk, state.(*ResponsesStreamState))
}
