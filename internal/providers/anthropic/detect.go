package anthropic

import "encoding/json"

// ExclusiveGuardFields is the fixed OpenAI-exclusive field list that guards
// Anthropic detection (spec §4.2.1), since OpenAI Chat Completions and
// Anthropic Messages share the model+messages shape.
var ExclusiveGuardFields = []string{
	"stream_options", "n", "logprobs", "top_logprobs", "logit_bias",
	"response_format", "seed", "presence_penalty", "frequency_penalty",
	"service_tier", "store", "parallel_tool_calls", "stop",
	"reasoning_effort", "reasoning_enabled", "max_completion_tokens",
}

// DetectRequest is priority-80 detection: the payload must deserialize as
// an Anthropic Request with max_tokens present (required field, §4.2.4),
// only user/assistant roles in messages, and none of the OpenAI-exclusive
// fields (§4.2.1).
func DetectRequest(payload []byte) bool {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return false
	}

	for _, f := range ExclusiveGuardFields {
		if _, present := raw[f]; present {
			return false
		}
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	if req.Model == "" || req.MaxTokens == 0 || len(req.Messages) == 0 {
		return false
	}

	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
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

	return resp.Role == "assistant" && len(resp.Content) > 0
}

func DetectStreamFrame(frame []byte) bool {
	var ev struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(frame, &ev); err != nil {
		return false
	}

	switch ev.Type {
	case "message_start", "content_block_start", "content_block_delta", "content_block_stop", "message_delta", "message_stop", "ping":
		return true
	default:
		return false
	}
}
