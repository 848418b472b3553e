package anthropic

import (
	"encoding/json"

	"github.com/davincible/llm-router-go/internal/universal"
)

// streamEvent is the union of Anthropic SSE event shapes across
// message_start/content_block_start/content_block_delta/content_block_stop/
// message_delta/message_stop/ping.
type streamEvent struct {
	Type string `json:"type"`

	Message *Response `json:"message,omitempty"`

	Index        int           `json:"index"`
	ContentBlock *ContentBlock `json:"content_block,omitempty"`
	Delta        *streamDelta  `json:"delta,omitempty"`
	Usage        *Usage        `json:"usage,omitempty"`
}

type streamDelta struct {
	Type string `json:"type"`

	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	Signature   string `json:"signature,omitempty"`

	StopReason string `json:"stop_reason,omitempty"`
}

// blockState tracks the in-progress content block for each index so that
// content_block_delta events (which carry only a fragment) can be
// classified and re-assembled, mirroring how the teacher's provider code
// tracks per-index SSE state.
type blockState struct {
	blockType string
	toolID    string
	toolName  string
	jsonBuf   string
}

// ChatStreamState accumulates per-content-block state across an Anthropic
// SSE stream.
type ChatStreamState struct {
	ID     string
	Model  string
	blocks map[int]*blockState
}

func (s *ChatStreamState) Reset() { *s = ChatStreamState{} }

func (s *ChatStreamState) block(index int) *blockState {
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

func DetectStreamFrameState(frame []byte) bool { return DetectStreamFrame(frame) }

// StreamToUniversal converts one decoded Anthropic SSE frame into a
// UniversalStreamChunk, tracking per-block state in ChatStreamState.
func StreamToUniversal(frame []byte, state *ChatStreamState) (universal.UniversalStreamChunk, error) {
	var ev streamEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return universal.UniversalStreamChunk{}, err
	}

	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			state.ID = ev.Message.ID
			state.Model = ev.Message.Model
		}

		return universal.KeepAliveChunk(), nil

	case "content_block_start":
		b := state.block(ev.Index)
		if ev.ContentBlock != nil {
			b.blockType = ev.ContentBlock.Type

			if ev.ContentBlock.Type == "tool_use" {
				b.toolID = ev.ContentBlock.ID
				b.toolName = ev.ContentBlock.Name
			}
		}

		return universal.KeepAliveChunk(), nil

	case "content_block_delta":
		return blockDeltaToUniversal(state, ev)

	case "content_block_stop":
		b := state.block(ev.Index)

		if b.blockType == "tool_use" {
			return universal.UniversalStreamChunk{
				ID:    state.ID,
				Model: state.Model,
				Choices: []universal.StreamChoiceDelta{
					{Index: 0, Delta: map[string]any{
						"tool_call_id": b.toolID,
						"tool_name":    b.toolName,
						"arguments":    b.jsonBuf,
					}},
				},
			}, nil
		}

		return universal.KeepAliveChunk(), nil

	case "message_delta":
		fr := stopReasonToUniversal(deltaStopReason(ev.Delta))
		if fr == nil {
			fr = &universal.FinishReason{Kind: universal.FinishStop}
		}

		if anyToolUseBlock(state) {
			fr = &universal.FinishReason{Kind: universal.FinishToolCalls}
		}

		var usage *universal.UniversalUsage

		if ev.Usage != nil {
			out := ev.Usage.OutputTokens
			usage = &universal.UniversalUsage{OutputTokens: &out}
		}

		return universal.UniversalStreamChunk{
			ID:    state.ID,
			Model: state.Model,
			Choices: []universal.StreamChoiceDelta{
				{Index: 0, Delta: map[string]any{}, FinishReason: fr},
			},
			Usage: usage,
		}, nil

	case "message_stop":
		return universal.KeepAliveChunk(), nil

	case "ping":
		return universal.KeepAliveChunk(), nil

	default:
		return universal.KeepAliveChunk(), nil
	}
}

func deltaStopReason(d *streamDelta) string {
	if d == nil {
		return ""
	}

	return d.StopReason
}

func anyToolUseBlock(state *ChatStreamState) bool {
	for _, b := range state.blocks {
		if b.blockType == "tool_use" {
			return true
		}
	}

	return false
}

func blockDeltaToUniversal(state *ChatStreamState, ev streamEvent) (universal.UniversalStreamChunk, error) {
	b := state.block(ev.Index)
	if ev.Delta == nil {
		return universal.KeepAliveChunk(), nil
	}

	switch ev.Delta.Type {
	case "text_delta":
		return universal.UniversalStreamChunk{
			ID:    state.ID,
			Model: state.Model,
			Choices: []universal.StreamChoiceDelta{
				{Index: 0, Delta: map[string]any{"content": ev.Delta.Text}},
			},
		}, nil

	case "input_json_delta":
		b.jsonBuf += ev.Delta.PartialJSON

		return universal.KeepAliveChunk(), nil

	case "thinking_delta":
		return universal.UniversalStreamChunk{
			ID:    state.ID,
			Model: state.Model,
			Choices: []universal.StreamChoiceDelta{
				{Index: 0, Delta: map[string]any{"reasoning": ev.Delta.Thinking}},
			},
		}, nil

	case "signature_delta":
		return universal.KeepAliveChunk(), nil

	default:
		return universal.KeepAliveChunk(), nil
	}
}

// StreamFromUniversal re-encodes a universal chunk as an Anthropic SSE
// frame body. Keep-alive chunks become pings; a tool-call delta is emitted
// as a single content_block_start+delta+stop triple collapsed into one
// input_json_delta frame since the caller re-frames each return as its own
// SSE event.
func StreamFromUniversal(chunk universal.UniversalStreamChunk, state *ChatStreamState) ([]byte, error) {
	if chunk.IsKeepAlive() {
		return json.Marshal(streamEvent{Type: "ping"})
	}

	for _, c := range chunk.Choices {
		if c.FinishReason != nil {
			return json.Marshal(streamEvent{
				Type:  "message_delta",
				Delta: &streamDelta{StopReason: finishReasonToStopReason(c.FinishReason)},
				Usage: usageFromChunk(chunk.Usage),
			})
		}

		if content, ok := c.Delta["content"].(string); ok {
			return json.Marshal(streamEvent{
				Type:  "content_block_delta",
				Index: c.Index,
				Delta: &streamDelta{Type: "text_delta", Text: content},
			})
		}

		if reasoning, ok := c.Delta["reasoning"].(string); ok {
			return json.Marshal(streamEvent{
				Type:  "content_block_delta",
				Index: c.Index,
				Delta: &streamDelta{Type: "thinking_delta", Thinking: reasoning},
			})
		}

		if args, ok := c.Delta["arguments"].(string); ok {
			return json.Marshal(streamEvent{
				Type:  "content_block_delta",
				Index: c.Index,
				Delta: &streamDelta{Type: "input_json_delta", PartialJSON: args},
			})
		}
	}

	return json.Marshal(streamEvent{Type: "ping"})
}

func usageFromChunk(u *universal.UniversalUsage) *Usage {
	if u == nil {
		return nil
	}

	out := &Usage{}
	if u.OutputTokens != nil {
		out.OutputTokens = *u.OutputTokens
	}

	if u.InputTokens != nil {
		out.InputTokens = *u.InputTokens
	}

	return out
}
