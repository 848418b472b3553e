package streaming

import (
	"io"

	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// SingleShot wraps a non-streaming provider response as a one-element
// Frame sequence, so a caller that asked for a streaming reply from a
// model the router had to call non-streaming (or a caller that asked for
// a unary reply routed through the streaming consumption path) can use
// the same pull loop either way (spec §4.4 item 1c).
type SingleShot struct {
	payload []byte
	done    bool
}

func NewSingleShot(payload []byte) *SingleShot {
	return &SingleShot{payload: payload}
}

func (s *SingleShot) Next() (Frame, error) {
	if s.done {
		return Frame{}, io.EOF
	}

	s.done = true

	return Frame{Data: s.payload}, nil
}

// FrameSource is satisfied by SSEDecoder and SingleShot: anything that
// yields a sequence of raw-JSON data frames terminated by io.EOF.
type FrameSource interface {
	Next() (Frame, error)
}

// Pump decodes frames from src, converts each through the source
// adapter's StreamToUniversal and the target adapter's
// StreamFromUniversal, and writes the re-encoded result through enc.
// Keep-alive chunks are written as SSE liveness blanks; a frame whose
// conversion errors is skipped rather than aborting the whole stream,
// matching the teacher's handleStreamingResponse fallback-on-error
// behavior (it forwards the original chunk there; here there is no
// "original" shape to forward once the target format differs, so the
// frame is dropped and the pump continues).
func Pump(src FrameSource, enc *SSEEncoder, sourceAdapter, targetAdapter providers.Adapter, sourceState, targetState providers.StreamState) error {
	for {
		frame, err := src.Next()
		if err == io.EOF {
			return enc.WriteDone()
		}
		if err != nil {
			return err
		}

		if frame.Done {
			return enc.WriteDone()
		}

		if frame.Comment {
			if err := enc.WriteKeepAlive(); err != nil {
				return err
			}
			continue
		}

		chunk, err := sourceAdapter.StreamToUniversal(frame.Data, sourceState)
		if err != nil {
			continue
		}

		out, err := targetAdapter.StreamFromUniversal(chunk, targetState)
		if err != nil {
			continue
		}

		if out == nil {
			if err := enc.WriteKeepAlive(); err != nil {
				return err
			}
			continue
		}

		if err := enc.WriteData(out); err != nil {
			return err
		}
	}
}

// PumpEventStream is the Bedrock-Converse-native variant of Pump: frames
// arrive as AWS event-stream binary messages instead of SSE, but the
// universal pivot and target re-encoding are identical.
func PumpEventStream(src *EventStreamDecoder, enc *SSEEncoder, sourceAdapter, targetAdapter providers.Adapter, sourceState, targetState providers.StreamState) error {
	for {
		msg, err := src.Next()
		if err == io.EOF {
			return enc.WriteDone()
		}
		if err != nil {
			return err
		}

		if msg.IsStreamEnd() {
			return enc.WriteDone()
		}

		chunk, err := sourceAdapter.StreamToUniversal(msg.Payload, sourceState)
		if err != nil {
			continue
		}

		out, err := targetAdapter.StreamFromUniversal(chunk, targetState)
		if err != nil {
			continue
		}

		if out == nil {
			if err := enc.WriteKeepAlive(); err != nil {
				return err
			}
			continue
		}

		if err := enc.WriteData(out); err != nil {
			return err
		}
	}
}

// WrapSingleShotResponse converts one non-streaming response payload into
// the target format's streaming wire shape: the output of a single
// StreamFromUniversal call; no terminator is appended. For when a caller requests
// a streaming reply from a model/route that only answers unary (spec
// §4.4 item 1c single-shot wrapping).
func WrapSingleShotResponse(payload []byte, sourceAdapter, targetAdapter providers.Adapter, targetState providers.StreamState) (universal.UniversalResponse, []byte, error) {
	universalResp, err := sourceAdapter.ResponseToUniversal(payload)
	if err != nil {
		return universal.UniversalResponse{}, nil, err
	}

	chunk := universal.UniversalStreamChunk{
		Model: universalResp.Model,
	}

	if len(universalResp.Messages) > 0 {
		chunk.Choices = []universal.StreamChoiceDelta{
			{Index: 0, Delta: assistantMessageToDelta(universalResp.Messages[len(universalResp.Messages)-1]), FinishReason: universalResp.FinishReason},
		}
	}

	if universalResp.Usage != nil {
		chunk.Usage = universalResp.Usage
	}

	out, err := targetAdapter.StreamFromUniversal(chunk, targetState)

	return universalResp, out, err
}

func assistantMessageToDelta(msg universal.Message) map[string]any {
	delta := map[string]any{}

	if msg.Assistant.IsPlain() {
		if msg.Assistant.Text != "" {
			delta["content"] = msg.Assistant.Text
		}
		return delta
	}

	var text string
	for _, part := range msg.Assistant.Parts {
		if part.Kind == universal.AssistantPartText {
			text += part.Text
		}
	}

	if text != "" {
		delta["content"] = text
	}

	return delta
}
