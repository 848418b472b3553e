package openai

import "encoding/json"

// DetectRequest performs the non-destructive schema test: does payload
// deserialize as a ChatRequest with model+messages present? This is the
// lowest-priority (50) detector, the permissive fallback (spec §4.2.1).
func DetectRequest(payload []byte) bool {
	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	return req.Model != "" && len(req.Messages) > 0
}

func DetectResponse(payload []byte) bool {
	var resp ChatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return false
	}

	return len(resp.Choices) > 0
}

func DetectStreamChunk(frame []byte) bool {
	var chunk ChatStreamChunk
	if err := json.Unmarshal(frame, &chunk); err != nil {
		return false
	}

	return len(chunk.Choices) > 0
}
