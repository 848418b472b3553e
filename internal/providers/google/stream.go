package google

import (
	"encoding/json"

	"github.com/davincible/llm-router-go/internal/universal"
)

// StreamState tracks the model name across chunks: streamGenerateContent
// chunks are bare Response objects and only the first reliably carries
// modelVersion.
type StreamState struct {
	Model string
}

func (s *StreamState) Reset() { *s = StreamState{} }

// StreamToUniversal converts one decoded streamGenerateContent chunk into a
// UniversalStreamChunk.
func StreamToUniversal(frame []byte, state *StreamState) (universal.UniversalStreamChunk, error) {
	var chunk Response
	if err := json.Unmarshal(frame, &chunk); err != nil {
		return universal.UniversalStreamChunk{}, err
	}

	if chunk.ModelVersion != "" {
		state.Model = chunk.ModelVersion
	}

	if len(chunk.Candidates) == 0 {
		return universal.KeepAliveChunk(), nil
	}

	cand := chunk.Candidates[0]

	delta := map[string]any{}

	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			switch {
			case p.FunctionCall != nil:
				delta["tool_name"] = p.FunctionCall.Name
				delta["arguments"] = p.FunctionCall.Args
			case p.Thought:
				delta["reasoning"] = p.Text
			case p.Text != "":
				delta["content"] = p.Text
			}
		}
	}

	var fr *universal.FinishReason
	if cand.FinishReason != "" {
		fr = finishReasonToUniversal(cand.FinishReason)

		if hasFunctionCall(cand.Content) {
			fr = &universal.FinishReason{Kind: universal.FinishToolCalls}
		}
	}

	uc := universal.UniversalStreamChunk{
		Model:   state.Model,
		Choices: []universal.StreamChoiceDelta{{Index: 0, Delta: delta, FinishReason: fr}},
	}

	if chunk.UsageMetadata != nil {
		um := chunk.UsageMetadata
		in, out, total := um.PromptTokenCount, um.CandidatesTokenCount, um.TotalTokenCount
		uc.Usage = &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}
	}

	return uc, nil
}

// StreamFromUniversal re-encodes a universal chunk as a streamGenerateContent
// chunk body.
func StreamFromUniversal(chunk universal.UniversalStreamChunk, state *StreamState) ([]byte, error) {
	if chunk.IsKeepAlive() {
		return json.Marshal(Response{ModelVersion: state.Model})
	}

	resp := Response{ModelVersion: chunk.Model}

	for _, c := range chunk.Choices {
		var parts []Part

		if content, ok := c.Delta["content"].(string); ok {
			parts = append(parts, Part{Text: content})
		}

		if reasoning, ok := c.Delta["reasoning"].(string); ok {
			parts = append(parts, Part{Text: reasoning, Thought: true})
		}

		cand := Candidate{Content: &Content{Role: "model", Parts: parts}}
		if c.FinishReason != nil {
			cand.FinishReason = finishReasonFromUniversal(c.FinishReason)
		}

		resp.Candidates = append(resp.Candidates, cand)
	}

	if chunk.Usage != nil {
		um := &UsageMetadata{}
		if chunk.Usage.InputTokens != nil {
			um.PromptTokenCount = *chunk.Usage.InputTokens
		}

		if chunk.Usage.OutputTokens != nil {
			um.CandidatesTokenCount = *chunk.Usage.OutputTokens
		}

		if chunk.Usage.TotalTokens != nil {
			um.TotalTokenCount = *chunk.Usage.TotalTokens
		}

		resp.UsageMetadata = um
	}

	return json.Marshal(resp)
}
