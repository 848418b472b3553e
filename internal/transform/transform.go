// Package transform implements the validate_or_transform pipeline (§4.3):
// a payload that already matches the target format's wire schema passes
// through untouched; otherwise the source format is detected and the
// payload is converted source -> universal -> target.
package transform

import (
	"github.com/davincible/llm-router-go/internal/llmerrors"
	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

// Result is the outcome of a RequestOrResponse transformation.
type Result struct {
	// PassThrough is true when payload already matched the target format;
	// Payload is then the original bytes, unchanged.
	PassThrough bool

	Payload      []byte
	SourceFormat universal.ProviderFormat
}

// RequestTransformer runs validate_or_transform for inbound requests.
type RequestTransformer struct {
	registry *providers.Registry
}

func NewRequestTransformer(registry *providers.Registry) *RequestTransformer {
	return &RequestTransformer{registry: registry}
}

// ValidateOrTransformRequest implements §4.3 step 1-4 for a request
// payload. UnableToDetectFormat is a hard failure here: a request that
// cannot be understood cannot be routed.
func (t *RequestTransformer) ValidateOrTransformRequest(payload []byte, target universal.ProviderFormat) (Result, error) {
	if targetAdapter, ok := t.registry.Get(target); ok && targetAdapter.DetectRequest(payload) {
		return Result{PassThrough: true, Payload: payload, SourceFormat: target}, nil
	}

	source, sourceAdapter, err := t.detectRequestSource(payload)
	if err != nil {
		return Result{}, err
	}

	targetAdapter, ok := t.registry.Get(target)
	if !ok {
		return Result{}, llmerrors.InvalidRequest("unsupported target format: " + string(target))
	}

	universalReq, err := sourceAdapter.RequestToUniversal(payload)
	if err != nil {
		return Result{}, llmerrors.TransformErr(llmerrors.TransformToUniversal, string(target), err)
	}

	if err := universal.ValidateConversation(universalReq.Messages); err != nil {
		return Result{}, llmerrors.InvalidRequest(err.Error())
	}

	out, err := targetAdapter.RequestFromUniversal(universalReq)
	if err != nil {
		return Result{}, llmerrors.TransformErr(llmerrors.TransformFromUniversal, string(target), err)
	}

	return Result{Payload: out, SourceFormat: source}, nil
}

// DetectFormat identifies which registered adapter's wire schema payload
// matches, highest detector priority first (spec §4.3 step 1). Used by
// internal/handlers to learn which format an inbound request arrived in,
// so the response can be translated back into that same format.
func DetectFormat(registry *providers.Registry, payload []byte) (universal.ProviderFormat, bool) {
	for _, a := range registry.OrderedByPriority() {
		if a.DetectRequest(payload) {
			return a.Format(), true
		}
	}

	return "", false
}

func (t *RequestTransformer) detectRequestSource(payload []byte) (universal.ProviderFormat, providers.Adapter, error) {
	for _, a := range t.registry.OrderedByPriority() {
		if a.DetectRequest(payload) {
			return a.Format(), a, nil
		}
	}

	return "", nil, llmerrors.TransformErr(llmerrors.TransformUnableToDetectFormat, "", nil)
}

// ResponseTransformer runs validate_or_transform for outbound responses.
type ResponseTransformer struct {
	registry *providers.Registry
}

func NewResponseTransformer(registry *providers.Registry) *ResponseTransformer {
	return &ResponseTransformer{registry: registry}
}

// ValidateOrTransformResponse implements §4.3 for a response payload. Unlike
// the request path, an undetectable source format falls back to
// pass-through (§4.3: "pass-through fallback at response time") rather than
// erroring, since the caller already received *a* response and failing to
// re-shape it is worse than forwarding it as-is.
func (t *ResponseTransformer) ValidateOrTransformResponse(payload []byte, source, target universal.ProviderFormat) (Result, error) {
	if source == target {
		return Result{PassThrough: true, Payload: payload, SourceFormat: source}, nil
	}

	sourceAdapter, ok := t.registry.Get(source)
	if !ok {
		return Result{PassThrough: true, Payload: payload, SourceFormat: source}, nil
	}

	targetAdapter, ok := t.registry.Get(target)
	if !ok {
		return Result{PassThrough: true, Payload: payload, SourceFormat: source}, nil
	}

	universalResp, err := sourceAdapter.ResponseToUniversal(payload)
	if err != nil {
		return Result{PassThrough: true, Payload: payload, SourceFormat: source}, nil
	}

	out, err := targetAdapter.ResponseFromUniversal(universalResp)
	if err != nil {
		return Result{PassThrough: true, Payload: payload, SourceFormat: source}, nil
	}

	return Result{Payload: out, SourceFormat: source}, nil
}
