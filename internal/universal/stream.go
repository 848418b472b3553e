package universal

// StreamChoiceDelta is one choice's incremental update within a stream
// chunk. Delta is a free-form JSON object because deltas carry whatever
// partial shape the adapter is accumulating (text fragment, tool-call
// argument fragment, ...).
type StreamChoiceDelta struct {
	Index        int
	Delta        map[string]any
	FinishReason *FinishReason
}

// UniversalStreamChunk is the canonical pivot for one event of a streaming
// response. A chunk with no choices and KeepAlive set carries no visible
// delta; adapters emit it for metadata-only provider events so the
// caller-facing stream stays well-formed.
type UniversalStreamChunk struct {
	ID      string
	Model   string
	Created int64
	Choices []StreamChoiceDelta
	Usage   *UniversalUsage

	KeepAlive bool
}

// KeepAliveChunk yields a chunk carrying no payload, used for
// metadata-only provider events (ping/heartbeat-equivalent).
func KeepAliveChunk() UniversalStreamChunk {
	return UniversalStreamChunk{KeepAlive: true}
}

func (c UniversalStreamChunk) IsKeepAlive() bool {
	return c.KeepAlive && len(c.Choices) == 0
}
