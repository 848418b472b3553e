package openai

import (
	"encoding/json"

	"github.com/davincible/llm-router-go/internal/universal"
)

// ChatStreamState is stateless: Chat Completions chunks map ~1:1 onto
// universal stream chunks, so nothing needs to be accumulated across
// frames.
type ChatStreamState struct{}

func (s *ChatStreamState) Reset() {}

func DetectChatStreamFrame(frame []byte) bool {
	return DetectStreamChunk(frame)
}

// ChatStreamToUniversal converts one decoded SSE frame body into a
// UniversalStreamChunk.
func ChatStreamToUniversal(frame []byte) (universal.UniversalStreamChunk, error) {
	var chunk ChatStreamChunk
	if err := json.Unmarshal(frame, &chunk); err != nil {
		return universal.UniversalStreamChunk{}, err
	}

	uc := universal.UniversalStreamChunk{ID: chunk.ID, Model: chunk.Model, Created: chunk.Created}

	for _, c := range chunk.Choices {
		delta := map[string]any{}

		if c.Delta.Role != "" {
			delta["role"] = c.Delta.Role
		}

		if c.Delta.Content != "" {
			delta["content"] = c.Delta.Content
		}

		if len(c.Delta.ToolCalls) > 0 {
			delta["tool_calls"] = c.Delta.ToolCalls
		}

		var fr *universal.FinishReason
		if c.FinishReason != nil {
			fr = finishReasonToUniversal(*c.FinishReason)
		}

		uc.Choices = append(uc.Choices, universal.StreamChoiceDelta{Index: c.Index, Delta: delta, FinishReason: fr})
	}

	if chunk.Usage != nil {
		uc.Usage = usageToUniversal(*chunk.Usage)
	}

	if len(uc.Choices) == 0 && uc.Usage == nil {
		uc.KeepAlive = true
	}

	return uc, nil
}

// ChatStreamFromUniversal re-encodes a universal chunk as a Chat
// Completions SSE frame body. Keep-alive chunks are omitted entirely
// (nil, nil), per spec §4.4.
func ChatStreamFromUniversal(chunk universal.UniversalStreamChunk) ([]byte, error) {
	if chunk.IsKeepAlive() {
		return nil, nil
	}

	out := ChatStreamChunk{ID: chunk.ID, Model: chunk.Model, Created: chunk.Created}

	for _, c := range chunk.Choices {
		delta := ChatStreamDelta{}

		if role, ok := c.Delta["role"].(string); ok {
			delta.Role = role
		}

		if content, ok := c.Delta["content"].(string); ok {
			delta.Content = content
		}

		var finishReason *string
		if c.FinishReason != nil {
			s := finishReasonFromUniversal(c.FinishReason)
			finishReason = &s
		}

		out.Choices = append(out.Choices, ChatStreamChoice{Index: c.Index, Delta: delta, FinishReason: finishReason})
	}

	if chunk.Usage != nil {
		u := ChatUsage{}

		if chunk.Usage.InputTokens != nil {
			u.PromptTokens = *chunk.Usage.InputTokens
		}

		if chunk.Usage.OutputTokens != nil {
			u.CompletionTokens = *chunk.Usage.OutputTokens
		}

		if chunk.Usage.TotalTokens != nil {
			u.TotalTokens = *chunk.Usage.TotalTokens
		}

		out.Usage = &u
	}

	return json.Marshal(out)
}

// ResponsesStreamState carries the response id and model taken from the
// response.created / response.in_progress events onto later chunks. Frames
// in the alternate {object:"response.delta", delta:{...}} envelope are not
// decoded: their object-valued delta does not unmarshal into
// responsesEvent, so ResponsesStreamToUniversal returns an error for them.
type ResponsesStreamState struct {
	ID            string
	Model         string
	StartedUsage  bool
}

func (s *ResponsesStreamState) Reset() { *s = ResponsesStreamState{} }

// responsesEvent is the union of shapes a Responses API streaming event
// can take (spec §4.4 item 2).
type responsesEvent struct {
	Type     string               `json:"type"`
	Response *ResponsesResponse   `json:"response,omitempty"`
	Delta    string               `json:"delta,omitempty"`
	Item     *ResponsesOutputItem `json:"item,omitempty"`

	// Object carries the alternate envelope's discriminator
	// ({object:"response.delta", delta:{type:...}}).
	Object string `json:"object,omitempty"`
}

func DetectResponsesStreamFrame(frame []byte) bool {
	var ev responsesEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return false
	}

	return ev.Type != "" || ev.Object == "response.delta"
}

// ResponsesStreamToUniversal converts one decoded Responses SSE frame into
// a UniversalStreamChunk, per spec §4.4 item 2.
func ResponsesStreamToUniversal(frame []byte, state *ResponsesStreamState) (universal.UniversalStreamChunk, error) {
	var ev responsesEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return universal.UniversalStreamChunk{}, err
	}

	switch ev.Type {
	case "response.created", "response.in_progress":
		if ev.Response != nil {
			state.ID = ev.Response.ID
			state.Model = ev.Response.Model
		}

		chunk := universal.UniversalStreamChunk{ID: state.ID, Model: state.Model}
		if ev.Response != nil && ev.Response.Usage != nil {
			in, out, total := ev.Response.Usage.InputTokens, ev.Response.Usage.OutputTokens, ev.Response.Usage.TotalTokens
			chunk.Usage = &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}
		} else {
			chunk.KeepAlive = true
		}

		return chunk, nil

	case "response.output_text.delta":
		return universal.UniversalStreamChunk{
			ID:    state.ID,
			Model: state.Model,
			Choices: []universal.StreamChoiceDelta{
				{Index: 0, Delta: map[string]any{"content": ev.Delta}},
			},
		}, nil

	case "response.completed":
		fr := &universal.FinishReason{Kind: universal.FinishStop}

		var usage *universal.UniversalUsage

		if ev.Response != nil {
			if hasToolCallOutput(ev.Response.Output) {
				fr = &universal.FinishReason{Kind: universal.FinishToolCalls}
			}

			if ev.Response.Usage != nil {
				in, out, total := ev.Response.Usage.InputTokens, ev.Response.Usage.OutputTokens, ev.Response.Usage.TotalTokens
				usage = &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}
			}
		}

		return universal.UniversalStreamChunk{
			ID:    state.ID,
			Model: state.Model,
			Choices: []universal.StreamChoiceDelta{
				{Index: 0, Delta: map[string]any{}, FinishReason: fr},
			},
			Usage: usage,
		}, nil

	case "response.output_item.added", "response.output_item.done":
		if ev.Item != nil && ev.Item.Type == "function_call" {
			return universal.UniversalStreamChunk{
				ID:    state.ID,
				Model: state.Model,
				Choices: []universal.StreamChoiceDelta{
					{Index: 0, Delta: map[string]any{"tool_call_id": ev.Item.CallID, "tool_name": ev.Item.Name, "arguments": ev.Item.Arguments}},
				},
			}, nil
		}

		return universal.KeepAliveChunk(), nil

	default:
		return universal.KeepAliveChunk(), nil
	}
}

func hasToolCallOutput(items []ResponsesOutputItem) bool {
	for _, it := range items {
		if it.Type == "function_call" {
			return true
		}
	}

	return false
}

// ResponsesStreamFromUniversal re-encodes a universal chunk as a Responses
// API SSE frame body. Keep-alive chunks become response.in_progress
// heartbeats; the terminal chunk becomes response.completed with final
// usage (§4.4 item 3).
func ResponsesStreamFromUniversal(chunk universal.UniversalStreamChunk, state *ResponsesStreamState) ([]byte, error) {
	if chunk.IsKeepAlive() {
		return json.Marshal(responsesEvent{Type: "response.in_progress"})
	}

	for _, c := range chunk.Choices {
		if c.FinishReason != nil {
			resp := &ResponsesResponse{ID: chunk.ID, Model: chunk.Model, Status: responsesFinishReasonToStatus(c.FinishReason)}

			if chunk.Usage != nil {
				u := &ResponsesUsage{}
				if chunk.Usage.InputTokens != nil {
					u.InputTokens = *chunk.Usage.InputTokens
				}

				if chunk.Usage.OutputTokens != nil {
					u.OutputTokens = *chunk.Usage.OutputTokens
				}

				if chunk.Usage.TotalTokens != nil {
					u.TotalTokens = *chunk.Usage.TotalTokens
				}

				resp.Usage = u
			}

			return json.Marshal(responsesEvent{Type: "response.completed", Response: resp})
		}

		if content, ok := c.Delta["content"].(string); ok {
			return json.Marshal(responsesEvent{Type: "response.output_text.delta", Delta: content})
		}
	}

	return json.Marshal(responsesEvent{Type: "response.in_progress"})
}
