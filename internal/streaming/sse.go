// Package streaming implements the frame decoders, chunk-level adapter
// dispatch, and re-encoders of the streaming engine (spec §4.4): SSE
// decoding and single-shot wrapping produce the same Frame sequence, and
// AWS event-stream binary framing yields EventStreamMessage values that
// PumpEventStream consumes.
package streaming

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one decoded event off the wire, independent of which framing
// protocol produced it.
type Frame struct {
	// Data is the raw JSON payload of the event. Nil for Done/Comment
	// frames.
	Data []byte

	// Done marks the SSE [DONE] sentinel; the caller must stop pulling
	// after a Done frame.
	Done bool

	// Comment marks an SSE comment line (`: ...`), a blank line or another
	// non-data field, carried through for liveness but with no payload to
	// transform.
	Comment bool
}

// SSEDecoder reads Server-Sent Events off r, one data event per line
// group, grounded on the teacher's handleStreamingResponse bufio.Scanner
// loop (internal/handlers/proxy.go): data lines are unwrapped, blank
// lines and `: `-prefixed comments are passed through as liveness, and
// `data: [DONE]` ends the stream.
type SSEDecoder struct {
	scanner *bufio.Scanner
}

func NewSSEDecoder(r io.Reader) *SSEDecoder {
	return &SSEDecoder{scanner: bufio.NewScanner(r)}
}

// Next returns the next frame, or io.EOF once the underlying reader is
// exhausted without a [DONE] sentinel (some providers simply close the
// connection instead of sending one).
func (d *SSEDecoder) Next() (Frame, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())

		if line == "" {
			return Frame{Comment: true}, nil
		}

		if strings.HasPrefix(line, ": ") {
			return Frame{Comment: true}, nil
		}

		if line == "data: [DONE]" {
			return Frame{Done: true}, nil
		}

		if strings.HasPrefix(line, "data: ") {
			return Frame{Data: []byte(strings.TrimPrefix(line, "data: "))}, nil
		}

		// Other SSE fields (event:, id:, retry:) carry no payload of
		// their own; treat like a comment so the caller's liveness
		// bookkeeping stays simple.
		return Frame{Comment: true}, nil
	}

	if err := d.scanner.Err(); err != nil {
		return Frame{}, err
	}

	return Frame{}, io.EOF
}

// SSEEncoder writes frames back out in SSE wire format.
type SSEEncoder struct {
	w io.Writer
}

func NewSSEEncoder(w io.Writer) *SSEEncoder {
	return &SSEEncoder{w: w}
}

// WriteData writes one `data: <payload>\n\n` event. Callers must already
// have filtered out keep-alive/nil payloads they don't want forwarded.
func (e *SSEEncoder) WriteData(payload []byte) error {
	_, err := io.WriteString(e.w, "data: "+string(payload)+"\n\n")
	return err
}

// WriteDone writes the terminal `data: [DONE]\n\n` sentinel.
func (e *SSEEncoder) WriteDone() error {
	_, err := io.WriteString(e.w, "data: [DONE]\n\n")
	return err
}

// WriteKeepAlive writes a bare newline, matching the teacher's handling
// of blank SSE lines as a liveness signal.
func (e *SSEEncoder) WriteKeepAlive() error {
	_, err := io.WriteString(e.w, "\n")
	return err
}
