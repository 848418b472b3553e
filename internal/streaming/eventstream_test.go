package streaming

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestMessage builds one AWS event-stream binary frame carrying the
// given headers and payload, mirroring the wire layout EventStreamDecoder
// parses: [total len][headers len][prelude crc][headers][payload][msg crc].
func encodeTestMessage(t *testing.T, headers map[string]string, payload []byte) []byte {
	t.Helper()

	var headerBuf bytes.Buffer
	for name, value := range headers {
		headerBuf.WriteByte(byte(len(name)))
		headerBuf.WriteString(name)
		headerBuf.WriteByte(headerTypeString)

		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(value)))
		headerBuf.Write(lenBuf[:])
		headerBuf.WriteString(value)
	}

	headersLen := headerBuf.Len()
	totalLen := 4 + 4 + 4 + headersLen + len(payload) + 4

	var buf bytes.Buffer

	var totalLenBuf, headersLenBuf [4]byte
	binary.BigEndian.PutUint32(totalLenBuf[:], uint32(totalLen))
	binary.BigEndian.PutUint32(headersLenBuf[:], uint32(headersLen))

	prelude := append(append([]byte{}, totalLenBuf[:]...), headersLenBuf[:]...)
	var preludeCRCBuf [4]byte
	binary.BigEndian.PutUint32(preludeCRCBuf[:], crc32.ChecksumIEEE(prelude))

	buf.Write(prelude)
	buf.Write(preludeCRCBuf[:])
	buf.Write(headerBuf.Bytes())
	buf.Write(payload)

	var msgCRCBuf [4]byte
	binary.BigEndian.PutUint32(msgCRCBuf[:], crc32.ChecksumIEEE(buf.Bytes()))
	buf.Write(msgCRCBuf[:])

	return buf.Bytes()
}

func TestEventStreamDecoder_DecodesMessage(t *testing.T) {
	payload := []byte(`{"delta":{"text":"hi"}}`)
	frame := encodeTestMessage(t, map[string]string{":event-type": "contentBlockDelta"}, payload)

	dec := NewEventStreamDecoder(bytes.NewReader(frame))

	msg, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "contentBlockDelta", msg.EventType())
	assert.Equal(t, payload, msg.Payload)
	assert.False(t, msg.IsStreamEnd())
}

func TestEventStreamDecoder_MessageStopEndsStream(t *testing.T) {
	frame := encodeTestMessage(t, map[string]string{":event-type": "messageStop"}, []byte(`{}`))

	dec := NewEventStreamDecoder(bytes.NewReader(frame))

	msg, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, msg.IsStreamEnd())
}

func TestEventStreamDecoder_RejectsBadChecksum(t *testing.T) {
	frame := encodeTestMessage(t, map[string]string{":event-type": "contentBlockDelta"}, []byte(`{}`))
	frame[len(frame)-1] ^= 0xFF // corrupt the trailing message-CRC byte

	dec := NewEventStreamDecoder(bytes.NewReader(frame))

	_, err := dec.Next()
	assert.Error(t, err)
}

func TestEventStreamDecoder_MultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeTestMessage(t, map[string]string{":event-type": "messageStart"}, []byte(`{"role":"assistant"}`)))
	buf.Write(encodeTestMessage(t, map[string]string{":event-type": "contentBlockDelta"}, []byte(`{"delta":{"text":"ok"}}`)))

	dec := NewEventStreamDecoder(&buf)

	m1, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "messageStart", m1.EventType())

	m2, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "contentBlockDelta", m2.EventType())
}
