// Package providers defines the uniform adapter contract (§4.2) that every
// per-format package implements, and the registry that looks adapters up by
// ProviderFormat.
package providers

import "github.com/davincible/llm-router-go/internal/universal"

// StreamState is per-request, per-stream accumulation state an adapter
// needs across successive frames (content-block indices seen so far,
// whether a message_start-equivalent event has already been emitted, the
// synthetic message id, ...). Each adapter package defines its own concrete
// state and exposes a constructor; the transform/streaming layer treats it
// opaquely.
type StreamState interface {
	// Reset clears accumulation state for a new stream. Adapters that are
	// stateless may implement this as a no-op.
	Reset()
}

// Adapter implements conversion between one provider wire format and the
// universal model, per spec §4.2.
type Adapter interface {
	Format() universal.ProviderFormat

	// DetectRequest is a non-destructive schema test: does payload
	// deserialize into this format's typed request schema?
	DetectRequest(payload []byte) bool
	RequestToUniversal(payload []byte) (universal.UniversalRequest, error)
	RequestFromUniversal(req universal.UniversalRequest) ([]byte, error)

	DetectResponse(payload []byte) bool
	ResponseToUniversal(payload []byte) (universal.UniversalResponse, error)
	ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error)

	NewStreamState() StreamState
	DetectStreamResponse(frame []byte) bool
	StreamToUniversal(frame []byte, state StreamState) (universal.UniversalStreamChunk, error)
	StreamFromUniversal(chunk universal.UniversalStreamChunk, state StreamState) ([]byte, error)
}

// Registry maps a ProviderFormat to its Adapter. Built once at process
// start and treated as read-only thereafter.
type Registry struct {
	adapters map[universal.ProviderFormat]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[universal.ProviderFormat]Adapter)}
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Format()] = a
}

func (r *Registry) Get(format universal.ProviderFormat) (Adapter, bool) {
	a, ok := r.adapters[format]
	return a, ok
}

// OrderedByPriority returns every registered format's adapter, ordered by
// detector priority (highest first), for use by the detection pipeline.
func (r *Registry) OrderedByPriority() []Adapter {
	formats := make([]universal.ProviderFormat, 0, len(r.adapters))
	for f := range r.adapters {
		formats = append(formats, f)
	}

	for i := 1; i < len(formats); i++ {
		for j := i; j > 0 && universal.DetectorPriority[formats[j]] > universal.DetectorPriority[formats[j-1]]; j-- {
			formats[j], formats[j-1] = formats[j-1], formats[j]
		}
	}

	out := make([]Adapter, 0, len(formats))
	for _, f := range formats {
		out = append(out, r.adapters[f])
	}

	return out
}
