package bedrock

import (
	"encoding/json"

	"github.com/davincible/llm-router-go/internal/universal"
)

// blockState tracks the in-progress content block at an index, mirroring
// the teacher's per-index SSE accumulation pattern generalized to
// Converse's contentBlockIndex framing.
type blockState struct {
	toolUseID string
	toolName  string
	jsonBuf   string
	isToolUse bool
}

// StreamState accumulates per-content-block state across a Converse event
// stream.
type StreamState struct {
	Model  string
	blocks map[int]*blockState
}

func (s *StreamState) Reset() { *s = StreamState{} }

func (s *StreamState) block(index int) *blockState {
	if s.blocks == nil {
		s.blocks = make(map[int]*blockState)
	}

	b, ok := s.blocks[index]
	if !ok {
		b = &blockState{}
		s.blocks[index] = b
	}

	return b
}

func (s *StreamState) anyToolUse() bool {
	for _, b := range s.blocks {
		if b.isToolUse {
			return true
		}
	}

	return false
}

// StreamToUniversal converts one decoded Converse stream event (already
// unwrapped from its AWS event-stream binary frame by the streaming layer)
// into a UniversalStreamChunk.
func StreamToUniversal(frame []byte, state *StreamState) (universal.UniversalStreamChunk, error) {
	var ev ConverseStreamEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return universal.UniversalStreamChunk{}, err
	}

	switch {
	case ev.MessageStart != nil:
		return universal.KeepAliveChunk(), nil

	case ev.ContentBlockStart != nil:
		b := state.block(ev.ContentBlockStart.ContentBlockIndex)
		if start := ev.ContentBlockStart.Start; start != nil && start.ToolUse != nil {
			b.isToolUse = true
			b.toolUseID = start.ToolUse.ToolUseID
			b.toolName = start.ToolUse.Name
		}

		return universal.KeepAliveChunk(), nil

	case ev.ContentBlockDelta != nil:
		return blockDeltaToUniversal(state, *ev.ContentBlockDelta)

	case ev.ContentBlockStop != nil:
		b := state.block(ev.ContentBlockStop.ContentBlockIndex)
		if b.isToolUse {
			return universal.UniversalStreamChunk{
				Model: state.Model,
				Choices: []universal.StreamChoiceDelta{
					{Index: 0, Delta: map[string]any{
						"tool_call_id": b.toolUseID,
						"tool_name":    b.toolName,
						"arguments":    b.jsonBuf,
					}},
				},
			}, nil
		}

		return universal.KeepAliveChunk(), nil

	case ev.MessageStop != nil:
		fr := stopReasonToUniversal(ev.MessageStop.StopReason)
		if fr == nil {
			fr = &universal.FinishReason{Kind: universal.FinishStop}
		}

		if state.anyToolUse() {
			fr = &universal.FinishReason{Kind: universal.FinishToolCalls}
		}

		return universal.UniversalStreamChunk{
			Model:   state.Model,
			Choices: []universal.StreamChoiceDelta{{Index: 0, Delta: map[string]any{}, FinishReason: fr}},
		}, nil

	case ev.Metadata != nil:
		if ev.Metadata.Usage == nil {
			return universal.KeepAliveChunk(), nil
		}

		u := ev.Metadata.Usage
		in, out, total := u.InputTokens, u.OutputTokens, u.TotalTokens

		return universal.UniversalStreamChunk{
			Model: state.Model,
			Usage: &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total},
		}, nil

	default:
		return universal.KeepAliveChunk(), nil
	}
}

func blockDeltaToUniversal(state *StreamState, d ContentBlockDeltaEvent) (universal.UniversalStreamChunk, error) {
	b := state.block(d.ContentBlockIndex)

	switch {
	case d.Delta.Text != "":
		return universal.UniversalStreamChunk{
			Model:   state.Model,
			Choices: []universal.StreamChoiceDelta{{Index: 0, Delta: map[string]any{"content": d.Delta.Text}}},
		}, nil

	case d.Delta.ToolUse != nil:
		b.jsonBuf += d.Delta.ToolUse.Input

		return universal.KeepAliveChunk(), nil

	case d.Delta.ReasoningContent != nil:
		return universal.UniversalStreamChunk{
			Model:   state.Model,
			Choices: []universal.StreamChoiceDelta{{Index: 0, Delta: map[string]any{"reasoning": d.Delta.ReasoningContent.Text}}},
		}, nil

	default:
		return universal.KeepAliveChunk(), nil
	}
}

// StreamFromUniversal re-encodes a universal chunk as a Converse stream
// event body (the streaming layer wraps it in the AWS event-stream binary
// framing before writing to the wire).
func StreamFromUniversal(chunk universal.UniversalStreamChunk, state *StreamState) ([]byte, error) {
	if chunk.IsKeepAlive() {
		return json.Marshal(ConverseStreamEvent{})
	}

	for _, c := range chunk.Choices {
		if c.FinishReason != nil {
			ev := ConverseStreamEvent{MessageStop: &MessageStopEvent{StopReason: finishReasonToStopReason(c.FinishReason)}}

			return json.Marshal(ev)
		}

		if content, ok := c.Delta["content"].(string); ok {
			ev := ConverseStreamEvent{ContentBlockDelta: &ContentBlockDeltaEvent{
				Delta:             ContentBlockDeltaUnion{Text: content},
				ContentBlockIndex: c.Index,
			}}

			return json.Marshal(ev)
		}

		if args, ok := c.Delta["arguments"].(string); ok {
			ev := ConverseStreamEvent{ContentBlockDelta: &ContentBlockDeltaEvent{
				Delta:             ContentBlockDeltaUnion{ToolUse: &ToolUseDelta{Input: args}},
				ContentBlockIndex: c.Index,
			}}

			return json.Marshal(ev)
		}
	}

	if chunk.Usage != nil {
		u := &TokenUsage{}
		if chunk.Usage.InputTokens != nil {
			u.InputTokens = *chunk.Usage.InputTokens
		}

		if chunk.Usage.OutputTokens != nil {
			u.OutputTokens = *chunk.Usage.OutputTokens
		}

		if chunk.Usage.TotalTokens != nil {
			u.TotalTokens = *chunk.Usage.TotalTokens
		}

		return json.Marshal(ConverseStreamEvent{Metadata: &MetadataEvent{Usage: u}})
	}

	return json.Marshal(ConverseStreamEvent{})
}
