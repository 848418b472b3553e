// Package router implements request routing (spec §4.6, §3.5): resolving a
// model identifier to a provider client, transforming the request into
// that provider's wire format, executing with retry, and transforming the
// response back to the caller's requested format.
package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/davincible/llm-router-go/internal/auth"
	"github.com/davincible/llm-router-go/internal/catalog"
	"github.com/davincible/llm-router-go/internal/llmerrors"
	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/retry"
	"github.com/davincible/llm-router-go/internal/transform"
	"github.com/davincible/llm-router-go/internal/universal"
)

// ProviderClient is one upstream provider's HTTP transport: it sends an
// already-format-transformed payload and returns the raw upstream bytes
// (for Complete) or a raw readable stream (for CompleteStream), untouched
// by the universal pivot. internal/providerhttp supplies the concrete
// implementations.
type ProviderClient interface {
	ID() string
	Formats() []universal.ProviderFormat

	Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error)
	CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error)
}

// StreamResult carries the raw upstream stream body alongside the wire
// format it's framed in, so the caller (internal/handlers) knows whether
// to decode it with streaming.SSEDecoder or streaming.EventStreamDecoder.
type StreamResult struct {
	Body   io.ReadCloser
	Format universal.ProviderFormat
}

// Router resolves models to providers and drives request/response
// transformation and retry, mirroring braintrust-llm-router's Router.
type Router struct {
	catalog     *catalog.Catalog
	resolver    *catalog.Resolver
	clients     map[string]ProviderClient         // alias -> client
	formatSlots map[universal.ProviderFormat]string // format -> alias, first-registered wins
	authConfigs map[string]auth.Config
	retryPolicy retry.Policy

	reqTransform  *transform.RequestTransformer
	respTransform *transform.ResponseTransformer
}

type route struct {
	client   ProviderClient
	auth     auth.Config
	spec     catalog.ModelSpec
	format   universal.ProviderFormat
	strategy *retry.Strategy
}

func (r *Router) Catalog() *catalog.Catalog { return r.catalog }

// ProviderAlias returns the alias a model would route to, for diagnostics
// and for the caller-facing "provider,model" selection syntax the teacher
// supports.
func (r *Router) ProviderAlias(model string) (string, error) {
	resolved, ok := r.resolver.Resolve(model)
	if !ok {
		return "", llmerrors.InvalidRequest("unknown model: %s", model)
	}

	alias := resolved.MatchedAs
	if _, ok := r.clients[alias]; !ok {
		if slot, ok := r.formatSlots[resolved.CatalogFormat]; ok {
			alias = slot
		}
	}

	return alias, nil
}

// resolveProvider implements the three-rule format selection of
// braintrust-llm-router's resolve_provider: (1) force Responses API for
// models in the requires-Responses-API closed set when the provider
// supports it, (2) honor the caller's requested output format when the
// provider speaks it and it differs from the catalog's native format,
// (3) otherwise fall back to the catalog's native format.
func (r *Router) resolveProvider(model string, outputFormat universal.ProviderFormat) (route, error) {
	resolved, ok := r.resolver.Resolve(model)
	if !ok {
		return route{}, llmerrors.InvalidRequest("unknown model: %s", model)
	}

	alias := resolved.MatchedAs
	if _, ok := r.clients[alias]; !ok {
		if slot, ok := r.formatSlots[resolved.CatalogFormat]; ok {
			alias = slot
		}
	}

	client, ok := r.clients[alias]
	if !ok {
		return route{}, llmerrors.NoProvider(string(resolved.CatalogFormat))
	}

	format := resolved.CatalogFormat
	if outputFormat == universal.FormatOpenAIChat && supportsFormat(client, universal.FormatResponses) && resolved.Spec.RequiresResponsesAPI() {
		format = universal.FormatResponses
	} else if outputFormat != resolved.CatalogFormat && supportsFormat(client, outputFormat) {
		format = outputFormat
	}

	authConfig, ok := r.authConfigs[alias]
	if !ok {
		return route{}, llmerrors.NoAuth(alias)
	}

	return route{
		client:   client,
		auth:     authConfig,
		spec:     resolved.Spec,
		format:   format,
		strategy: r.retryPolicy.Strategy(),
	}, nil
}

func supportsFormat(c ProviderClient, f universal.ProviderFormat) bool {
	for _, cf := range c.Formats() {
		if cf == f {
			return true
		}
	}

	return false
}

// Complete executes a unary completion request (spec §4.6): transform,
// dispatch with retry, transform the response back to outputFormat.
func (r *Router) Complete(ctx context.Context, body []byte, model string, outputFormat universal.ProviderFormat, headers http.Header) ([]byte, error) {
	rt, err := r.resolveProvider(model, outputFormat)
	if err != nil {
		return nil, err
	}

	payload, err := r.transformRequest(body, rt)
	if err != nil {
		return nil, err
	}

	respBytes, err := r.executeWithRetry(ctx, rt, payload, headers)
	if err != nil {
		return nil, err
	}

	result, err := r.respTransform.ValidateOrTransformResponse(respBytes, rt.format, outputFormat)
	if err != nil {
		return nil, err
	}

	return result.Payload, nil
}

// CompleteStream executes a streaming completion request. The raw
// upstream stream is returned, still in rt.format's wire framing;
// internal/streaming performs the chunk-level re-encoding into
// outputFormat once the caller starts pulling.
func (r *Router) CompleteStream(ctx context.Context, body []byte, model string, outputFormat universal.ProviderFormat, headers http.Header) (StreamResult, universal.ProviderFormat, error) {
	rt, err := r.resolveProvider(model, outputFormat)
	if err != nil {
		return StreamResult{}, "", err
	}

	payload, err := r.transformRequest(body, rt)
	if err != nil {
		return StreamResult{}, "", err
	}

	stream, err := rt.client.CompleteStream(ctx, payload, rt.auth, rt.spec, rt.format, headers)
	if err != nil {
		return StreamResult{}, "", err
	}

	return StreamResult{Body: stream, Format: rt.format}, rt.format, nil
}

// transformRequest converts body into rt.format's wire shape and pins the
// resolved model identifier into the transformed payload, mirroring the
// teacher's selectModel model-field rewrite and the original's
// transform_request(body, format, Some(&spec.model)) call.
func (r *Router) transformRequest(body []byte, rt route) ([]byte, error) {
	result, err := r.reqTransform.ValidateOrTransformRequest(body, rt.format)
	if err != nil {
		return nil, err
	}

	return overrideModel(result.Payload, rt.format, rt.spec.Model)
}

// overrideModel patches the resolved catalog model identifier into the
// transformed payload's "model" key, for formats that carry the model in
// the request body. Google and Bedrock carry the model in the URL path
// instead (spec §6.2) and are left untouched.
func overrideModel(payload []byte, format universal.ProviderFormat, model string) ([]byte, error) {
	switch format {
	case universal.FormatGoogle, universal.FormatBedrock:
		return payload, nil
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		// Not a JSON object (shouldn't happen for these formats); leave
		// the payload as produced by the transformer.
		return payload, nil
	}

	body["model"] = model

	return json.Marshal(body)
}

func (r *Router) executeWithRetry(ctx context.Context, rt route, payload []byte, headers http.Header) ([]byte, error) {
	for {
		resp, err := rt.client.Complete(ctx, payload, rt.auth, rt.spec, rt.format, headers)
		if err == nil {
			return resp, nil
		}

		delay, retryable := rt.strategy.NextDelay(err)
		if !retryable {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Builder assembles a Router from a catalog, a set of provider clients
// keyed by alias, their auth configs, and a retry policy, mirroring
// braintrust-llm-router's RouterBuilder.
type Builder struct {
	catalog     *catalog.Catalog
	registry    *providers.Registry
	clients     map[string]ProviderClient
	formatSlots map[universal.ProviderFormat]string
	authConfigs map[string]auth.Config
	retryPolicy retry.Policy
}

// NewBuilder starts a Builder. registry is the universal format-adapter
// registry used for request/response transformation; it must already have
// every format the clients speak registered.
func NewBuilder(c *catalog.Catalog, registry *providers.Registry) *Builder {
	return &Builder{
		catalog:     c,
		registry:    registry,
		clients:     make(map[string]ProviderClient),
		formatSlots: make(map[universal.ProviderFormat]string),
		authConfigs: make(map[string]auth.Config),
		retryPolicy: retry.DefaultPolicy(),
	}
}

func (b *Builder) WithRetryPolicy(p retry.Policy) *Builder {
	b.retryPolicy = p
	return b
}

// AddProvider registers a client under alias and claims its formats'
// format-slots if not already claimed (first-registered wins, matching
// the original's add_provider).
func (b *Builder) AddProvider(alias string, client ProviderClient) *Builder {
	b.clients[alias] = client

	for _, f := range client.Formats() {
		if _, claimed := b.formatSlots[f]; !claimed {
			b.formatSlots[f] = alias
		}
	}

	return b
}

func (b *Builder) AddAuth(alias string, a auth.Config) *Builder {
	b.authConfigs[alias] = a
	return b
}

func (b *Builder) Build() (*Router, error) {
	if b.catalog == nil {
		return nil, llmerrors.InvalidRequest("model catalog not configured")
	}

	return &Router{
		catalog:       b.catalog,
		resolver:      catalog.NewResolver(b.catalog),
		clients:       b.clients,
		formatSlots:   b.formatSlots,
		authConfigs:   b.authConfigs,
		retryPolicy:   b.retryPolicy,
		reqTransform:  transform.NewRequestTransformer(b.registry),
		respTransform: transform.NewResponseTransformer(b.registry),
	}, nil
}
