package google

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// Adapter implements providers.Adapter for the Gemini generateContent /
// streamGenerateContent API. Gemini carries its model in the request URL
// path, not the body (§6.2), so RequestToUniversal leaves Model empty; the
// Google HTTP client takes the URL's model from the resolved catalog spec.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Format() universal.ProviderFormat { return universal.FormatGoogle }

func (a *Adapter) DetectRequest(payload []byte) bool { return DetectRequest(payload) }

func (a *Adapter) RequestToUniversal(payload []byte) (universal.UniversalRequest, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("unmarshal gemini generateContent request: %w", err)
	}

	return RequestToUniversal("", req)
}

func (a *Adapter) RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	gr, err := RequestFromUniversal(req)
	if err != nil {
		return nil, err
	}

	return json.Marshal(gr)
}

func (a *Adapter) DetectResponse(payload []byte) bool { return DetectResponse(payload) }

func (a *Adapter) ResponseToUniversal(payload []byte) (universal.UniversalResponse, error) {
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return universal.UniversalResponse{}, fmt.Errorf("unmarshal gemini generateContent response: %w", err)
	}

	return ResponseToUniversal(resp)
}

func (a *Adapter) ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	gr, err := ResponseFromUniversal(resp)
	if err != nil {
		return nil, err
	}

	return json.Marshal(gr)
}

func (a *Adapter) NewStreamState() providers.StreamState { return &StreamState{} }

func (a *Adapter) DetectStreamResponse(frame []byte) bool { return DetectStreamFrame(frame) }

func (a *Adapter) StreamToUniversal(frame []byte, state providers.StreamState) (universal.UniversalStreamChunk, error) {
	return StreamToUniversal(frame, state.(*StreamState))
}

func (a *Adapter) StreamFromUniversal(chunk universal.UniversalStreamChunk, state providers.StreamState) ([]byte, error) {
	return StreamFromUniversal(chunk, state.(*StreamState))
}
