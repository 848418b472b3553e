package mistral

import "encoding/json"

// DetectRequest is priority-70 detection: the payload must deserialize as a
// Chat-Completions-shaped request AND carry at least one of Mistral's
// exclusive fields (safe_prompt, random_seed). Without one of those
// markers the payload is indistinguishable from OpenAI Chat Completions
// and is left for the priority-50 OpenAI fallback to claim (§4.2.1 detector
// exclusivity invariant).
func DetectRequest(payload []byte) bool {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	if req.Model == "" || len(req.Messages) == 0 {
		return false
	}

	return req.SafePrompt != nil || req.RandomSeed != nil
}

// DetectResponse never positively identifies a Mistral response: the
// response shape is identical to OpenAI's, so format is inferred from the
// request that produced it rather than from response detection.
func DetectResponse(payload []byte) bool {
	return false
}

func DetectStreamFrame(frame []byte) bool {
	return false
}
