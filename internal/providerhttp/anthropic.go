package providerhttp

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/davincible/llm-router-go/internal/auth"
	"github.com/davincible/llm-router-go/internal/catalog"
	"github.com/davincible/llm-router-go/internal/llmerrors"
	"github.com/davincible/llm-router-go/internal/universal"
)

const (
	defaultAnthropicVersion = "2023-06-01"
	defaultAnthropicBeta    = "structured-outputs-2025-11-13"
)

// AnthropicClient speaks the Messages API (spec §6.2 row 4, §6.3).
type AnthropicClient struct {
	*baseClient
	id string
}

func NewAnthropicClient(id, baseURL string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{baseClient: newBaseClient(baseURL, timeout), id: id}
}

func (c *AnthropicClient) ID() string { return c.id }

func (c *AnthropicClient) Formats() []universal.ProviderFormat {
	return []universal.ProviderFormat{universal.FormatAnthropic}
}

func (c *AnthropicClient) Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, anthropicMessagesURL(c.baseURL), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	c.applyHeaders(req, a, headers)

	return c.do(req)
}

func (c *AnthropicClient) CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, anthropicMessagesURL(c.baseURL), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	c.applyHeaders(req, a, headers)
	req.Header.Set("Accept", "text/event-stream")

	return c.doStream(req)
}

// applyHeaders sets the required anthropic-version (configurable, spec
// §6.3) and anthropic-beta (caller override wins, else the default) plus
// auth, and uses x-api-key rather than Bearer since that's Anthropic's
// documented auth header — AuthConfig.ApplyHeaders would set
// "authorization: Bearer ..." by default, so Anthropic's auth is applied
// with an explicit header/prefix override when the config didn't already
// specify one.
func (c *AnthropicClient) applyHeaders(req *http.Request, a auth.Config, headers http.Header) {
	version := headers.Get("anthropic-version")
	if version == "" {
		version = defaultAnthropicVersion
	}

	req.Header.Set("anthropic-version", version)

	beta := headers.Get("anthropic-beta")
	if beta == "" {
		beta = defaultAnthropicBeta
	}

	req.Header.Set("anthropic-beta", beta)

	if a.Kind == auth.KindAPIKey && a.Header == "authorization" {
		req.Header.Set("x-api-key", a.Key)
		return
	}

	a.ApplyHeaders(req.Header)
}
