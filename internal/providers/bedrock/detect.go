package bedrock

import "encoding/json"

// DetectRequest recognizes a Converse request: a non-empty messages list that
// decodes into the Converse schema, every role "user" or "assistant", and no
// snake_case "max_tokens" key. It runs at priority 95 (the highest in the
// registry, since Converse's shape is otherwise close to Anthropic's and
// must win the tie, §4.2.6).
func DetectRequest(payload []byte) bool {
	var req ConverseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	if len(req.Messages) == 0 {
		return false
	}

	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			return false
		}
	}

	var guard struct {
		InferenceConfig any `json:"inferenceConfig"`
		ToolConfig      any `json:"toolConfig"`
		MaxTokens       any `json:"max_tokens"`
	}

	if err := json.Unmarshal(payload, &guard); err != nil {
		return false
	}

	// max_tokens (snake_case) is Anthropic's, so its presence rules Converse
	// out. inferenceConfig/toolConfig are decoded but not required.
	if guard.MaxTokens != nil {
		return false
	}

	return true
}

func DetectResponse(payload []byte) bool {
	var resp ConverseResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return false
	}

	return resp.Output != nil && resp.Output.Message != nil
}

func DetectStreamFrame(frame []byte) bool {
	var ev ConverseStreamEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return false
	}

	return ev.MessageStart != nil || ev.ContentBlockStart != nil || ev.ContentBlockDelta != nil ||
		ev.ContentBlockStop != nil || ev.MessageStop != nil || ev.Metadata != nil
}
