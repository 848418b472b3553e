package streaming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEDecoder_DataAndDone(t *testing.T) {
	raw := "data: {\"a\":1}\n\n" +
		": heartbeat\n\n" +
		"data: {\"a\":2}\n\n" +
		"data: [DONE]\n\n"

	dec := NewSSEDecoder(strings.NewReader(raw))

	f1, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(f1.Data))

	f2, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f2.Comment)

	f3, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f3.Comment)

	f4, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f4.Comment)

	f5, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(f5.Data))

	f6, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f6.Comment)

	f7, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f7.Done)
}

func TestSSEDecoder_BlankLineIsComment(t *testing.T) {
	dec := NewSSEDecoder(strings.NewReader("\ndata: {}\n\n"))

	f1, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, f1.Comment)

	f2, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(f2.Data))
}

func TestSSEEncoder_WriteData(t *testing.T) {
	var sb strings.Builder
	enc := NewSSEEncoder(&sb)

	require.NoError(t, enc.WriteData([]byte(`{"x":1}`)))
	require.NoError(t, enc.WriteDone())

	assert.Equal(t, "data: {\"x\":1}\n\ndata: [DONE]\n\n", sb.String())
}
