package bedrock

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// Adapter implements providers.Adapter for the AWS Bedrock Converse API.
// Like Gemini, the model is carried in the URL path, not the body, so
// RequestToUniversal leaves Model empty; the Bedrock HTTP client takes the
// URL's model from the resolved catalog spec.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Format() universal.ProviderFormat { return universal.FormatBedrock }

func (a *Adapter) DetectRequest(payload []byte) bool { return DetectRequest(payload) }

func (a *Adapter) RequestToUniversal(payload []byte) (universal.UniversalRequest, error) {
	var req ConverseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("unmarshal bedrock converse request: %w", err)
	}

	return RequestToUniversal("", req)
}

func (a *Adapter) RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	cr, err := RequestFromUniversal(req)
	if err != nil {
		return nil, err
	}

	return json.Marshal(cr)
}

func (a *Adapter) DetectResponse(payload []byte) bool { return DetectResponse(payload) }

func (a *Adapter) ResponseToUniversal(payload []byte) (universal.UniversalResponse, error) {
	var resp ConverseResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return universal.UniversalResponse{}, fmt.Errorf("unmarshal bedrock converse response: %w", err)
	}

	return ResponseToUniversal("", resp)
}

func (a *Adapter) ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	cr, err := ResponseFromUniversal(resp)
	if err != nil {
		return nil, err
	}

	return json.Marshal(cr)
}

func (a *Adapter) NewStreamState() providers.StreamState { return &StreamState{} }

func (a *Adapter) DetectStreamResponse(frame []byte) bool { return DetectStreamFrame(frame) }

func (a *Adapter) StreamToUniversal(frame []byte, state providers.StreamState) (universal.UniversalStreamChunk, error) {
	return StreamToUniversal(frame, state.(*StreamState))
}

func (a *Adapter) StreamFromUniversal(chunk universal.UniversalStreamChunk, state providers.StreamState) ([]byte, error) {
	return StreamFromUniversal(chunk, state.(*StreamState))
}
