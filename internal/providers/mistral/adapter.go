package mistral

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// Adapter implements providers.Adapter for Mistral's chat completions API.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Format() universal.ProviderFormat { return universal.FormatMistral }

func (a *Adapter) DetectRequest(payload []byte) bool { return DetectRequest(payload) }

func (a *Adapter) RequestToUniversal(payload []byte) (universal.UniversalRequest, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("unmarshal mistral request: %w", err)
	}

	return RequestToUniversal(req)
}

func (a *Adapter) RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	return RequestFromUniversal(req)
}

func (a *Adapter) DetectResponse(payload []byte) bool { return DetectResponse(payload) }

func (a *Adapter) ResponseToUniversal(payload []byte) (universal.UniversalResponse, error) {
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return universal.UniversalResponse{}, fmt.Errorf("unmarshal mistral response: %w", err)
	}

	return ResponseToUniversal(resp)
}

func (a *Adapter) ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	return ResponseFromUniversal(resp)
}

func (a *Adapter) NewStreamState() providers.StreamState { return &StreamState{} }

func (a *Adapter) DetectStreamResponse(frame []byte) bool { return DetectStreamFrame(frame) }

func (a *Adapter) StreamToUniversal(frame []byte, _ providers.StreamState) (universal.UniversalStreamChunk, error) {
	return StreamToUniversal(frame)
}

func (a *Adapter) StreamFromUniversal(chunk universal.UniversalStreamChunk, _ providers.StreamState) ([]byte, error) {
	return StreamFromUniversal(chunk)
}
