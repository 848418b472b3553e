package streaming

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// eventStreamHeaderType enumerates the AWS event-stream header value type
// tags (https://smithy.io/2.0/spec/event-streams.html binary framing,
// referenced from original_source's mention of bedrock_event_stream).
const (
	headerTypeBoolTrue  = 0
	headerTypeBoolFalse = 1
	headerTypeByte      = 2
	headerTypeShort     = 3
	headerTypeInteger   = 4
	headerTypeLong      = 5
	headerTypeByteArray = 6
	headerTypeString    = 7
	headerTypeTimestamp = 8
	headerTypeUUID      = 16
)

// EventStreamMessage is one decoded AWS event-stream frame: a header map
// plus an opaque payload. Bedrock Converse streaming carries its event
// discriminator in the ":event-type" header and the chunk body as JSON in
// Payload.
type EventStreamMessage struct {
	Headers map[string]string
	Payload []byte
}

// EventType returns the ":event-type" header, the discriminator Bedrock
// Converse streaming uses to distinguish messageStart/contentBlockDelta/
// messageStop/etc frames.
func (m EventStreamMessage) EventType() string {
	return m.Headers[":event-type"]
}

// ExceptionType returns the ":exception-type" header, set instead of
// ":event-type" when the stream delivers a modeled service exception.
func (m EventStreamMessage) ExceptionType() string {
	return m.Headers[":exception-type"]
}

// EventStreamDecoder reads the AWS event-stream binary protocol: each
// message is a length-prefixed frame of [total length][header length]
// [prelude crc][headers][payload][message crc]. Used for Bedrock
// Converse's native `model/{model}/converse-stream` response (spec
// §4.4/§6.2) — the SSE `invoke-with-response-stream` path for
// Anthropic-on-Bedrock models uses SSEDecoder instead.
type EventStreamDecoder struct {
	r io.Reader
}

func NewEventStreamDecoder(r io.Reader) *EventStreamDecoder {
	return &EventStreamDecoder{r: r}
}

// Next reads and validates the next message, returning io.EOF when the
// underlying stream is exhausted cleanly between messages.
func (d *EventStreamDecoder) Next() (EventStreamMessage, error) {
	var totalLenBuf [4]byte
	if _, err := io.ReadFull(d.r, totalLenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return EventStreamMessage{}, fmt.Errorf("event-stream: truncated prelude: %w", err)
		}
		return EventStreamMessage{}, err
	}

	totalLen := binary.BigEndian.Uint32(totalLenBuf[:])
	if totalLen < 16 {
		return EventStreamMessage{}, fmt.Errorf("event-stream: total length %d smaller than minimum frame", totalLen)
	}

	rest := make([]byte, totalLen-4)
	if _, err := io.ReadFull(d.r, rest); err != nil {
		return EventStreamMessage{}, fmt.Errorf("event-stream: truncated message: %w", err)
	}

	headersLen := binary.BigEndian.Uint32(rest[0:4])

	prelude := make([]byte, 0, 8)
	prelude = append(prelude, totalLenBuf[:]...)
	prelude = append(prelude, rest[0:4]...)
	preludeCRC := binary.BigEndian.Uint32(rest[4:8])
	if crc32.ChecksumIEEE(prelude) != preludeCRC {
		return EventStreamMessage{}, fmt.Errorf("event-stream: prelude checksum mismatch")
	}

	headersStart := 8
	headersEnd := headersStart + int(headersLen)
	if headersEnd > len(rest)-4 {
		return EventStreamMessage{}, fmt.Errorf("event-stream: header length exceeds frame")
	}

	headers, err := decodeHeaders(rest[headersStart:headersEnd])
	if err != nil {
		return EventStreamMessage{}, err
	}

	payloadEnd := len(rest) - 4
	payload := rest[headersEnd:payloadEnd]

	messageCRC := binary.BigEndian.Uint32(rest[payloadEnd:])
	full := append(append([]byte{}, totalLenBuf[:]...), rest[:payloadEnd]...)
	if crc32.ChecksumIEEE(full) != messageCRC {
		return EventStreamMessage{}, fmt.Errorf("event-stream: message checksum mismatch")
	}

	return EventStreamMessage{Headers: headers, Payload: payload}, nil
}

func decodeHeaders(b []byte) (map[string]string, error) {
	headers := map[string]string{}

	for len(b) > 0 {
		nameLen := int(b[0])
		b = b[1:]
		if nameLen > len(b) {
			return nil, fmt.Errorf("event-stream: truncated header name")
		}

		name := string(b[:nameLen])
		b = b[nameLen:]

		if len(b) < 1 {
			return nil, fmt.Errorf("event-stream: truncated header type")
		}

		valueType := b[0]
		b = b[1:]

		value, rest, err := decodeHeaderValue(valueType, b)
		if err != nil {
			return nil, err
		}

		headers[name] = value
		b = rest
	}

	return headers, nil
}

// decodeHeaderValue decodes a single header value per its type tag,
// returning its string rendering and the unconsumed remainder of b.
// Bedrock Converse only ever sets string-typed headers
// (:event-type/:content-type/:message-type), but the other tags are
// decoded for protocol completeness.
func decodeHeaderValue(valueType byte, b []byte) (string, []byte, error) {
	switch valueType {
	case headerTypeBoolTrue:
		return "true", b, nil
	case headerTypeBoolFalse:
		return "false", b, nil
	case headerTypeByte:
		if len(b) < 1 {
			return "", nil, fmt.Errorf("event-stream: truncated byte header")
		}
		return fmt.Sprintf("%d", int8(b[0])), b[1:], nil
	case headerTypeShort:
		if len(b) < 2 {
			return "", nil, fmt.Errorf("event-stream: truncated short header")
		}
		return fmt.Sprintf("%d", int16(binary.BigEndian.Uint16(b))), b[2:], nil
	case headerTypeInteger:
		if len(b) < 4 {
			return "", nil, fmt.Errorf("event-stream: truncated integer header")
		}
		return fmt.Sprintf("%d", int32(binary.BigEndian.Uint32(b))), b[4:], nil
	case headerTypeLong, headerTypeTimestamp:
		if len(b) < 8 {
			return "", nil, fmt.Errorf("event-stream: truncated long/timestamp header")
		}
		return fmt.Sprintf("%d", int64(binary.BigEndian.Uint64(b))), b[8:], nil
	case headerTypeByteArray:
		if len(b) < 2 {
			return "", nil, fmt.Errorf("event-stream: truncated byte-array header length")
		}
		n := int(binary.BigEndian.Uint16(b))
		b = b[2:]
		if n > len(b) {
			return "", nil, fmt.Errorf("event-stream: truncated byte-array header value")
		}
		return string(b[:n]), b[n:], nil
	case headerTypeString:
		if len(b) < 2 {
			return "", nil, fmt.Errorf("event-stream: truncated string header length")
		}
		n := int(binary.BigEndian.Uint16(b))
		b = b[2:]
		if n > len(b) {
			return "", nil, fmt.Errorf("event-stream: truncated string header value")
		}
		return string(b[:n]), b[n:], nil
	case headerTypeUUID:
		if len(b) < 16 {
			return "", nil, fmt.Errorf("event-stream: truncated uuid header")
		}
		return fmt.Sprintf("%x", b[:16]), b[16:], nil
	default:
		return "", nil, fmt.Errorf("event-stream: unknown header value type %d", valueType)
	}
}

// IsStreamEnd reports whether the message carries the Converse
// stream-terminal event type or a modeled exception, either of which
// ends the pull loop.
func (m EventStreamMessage) IsStreamEnd() bool {
	return m.EventType() == "messageStop" || m.ExceptionType() != ""
}
