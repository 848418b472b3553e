package google

import "encoding/json"

// DetectRequest recognizes a Gemini generateContent request: it has no
// "model"/"messages" top-level fields (those are Chat/Anthropic shapes) and
// instead carries "contents" with role-tagged parts (§4.2.5, priority 90).
func DetectRequest(payload []byte) bool {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	if len(req.Contents) == 0 {
		return false
	}

	for _, c := range req.Contents {
		if c.Role != "" && c.Role != "user" && c.Role != "model" {
			return false
		}
	}

	var guard struct {
		Model    any `json:"model"`
		Messages any `json:"messages"`
	}

	if err := json.Unmarshal(payload, &guard); err == nil {
		if guard.Model != nil || guard.Messages != nil {
			return false
		}
	}

	return true
}

func DetectResponse(payload []byte) bool {
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return false
	}

	return len(resp.Candidates) > 0 || resp.UsageMetadata != nil
}

// DetectStreamFrame recognizes a Gemini stream chunk: it is a bare Response
// object (no envelope "type"/"object" discriminator like OpenAI/Anthropic).
func DetectStreamFrame(frame []byte) bool {
	var chunk Response
	if err := json.Unmarshal(frame, &chunk); err != nil {
		return false
	}

	return len(chunk.Candidates) > 0 || chunk.UsageMetadata != nil
}
