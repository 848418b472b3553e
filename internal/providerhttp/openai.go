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

// OpenAIClient speaks both Chat Completions and the Responses API (spec
// §6.2 rows 1-2); which path is used is selected per-request by format,
// matching the router's Responses-API-forcing rule. Any OpenAI-compatible
// aggregator (Groq, Fireworks, Together, Perplexity, Cerebras, xAI,
// Replicate, Baseten, Lepton, Ollama, Databricks — spec §6.2 footnote,
// folded in per DESIGN.md's "Deleted teacher code" entry for
// nvidia.go/openrouter.go) is just another instance of this client
// pointed at a different base URL.
type OpenAIClient struct {
	*baseClient
	id string
}

func NewOpenAIClient(id, baseURL string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{baseClient: newBaseClient(baseURL, timeout), id: id}
}

func (c *OpenAIClient) ID() string { return c.id }

func (c *OpenAIClient) Formats() []universal.ProviderFormat {
	return []universal.ProviderFormat{universal.FormatOpenAIChat, universal.FormatResponses}
}

func (c *OpenAIClient) urlFor(format universal.ProviderFormat, streaming bool) string {
	if format == universal.FormatResponses {
		return openAIResponsesURL(c.baseURL)
	}

	return openAIChatURL(c.baseURL)
}

func (c *OpenAIClient) Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.urlFor(format, false), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	applyForwardedHeaders(req, headers)
	a.ApplyHeaders(req.Header)

	return c.do(req)
}

func (c *OpenAIClient) CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.urlFor(format, true), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	applyForwardedHeaders(req, headers)
	a.ApplyHeaders(req.Header)
	req.Header.Set("Accept", "text/event-stream")

	return c.doStream(req)
}

// applyForwardedHeaders copies the caller's organization/project headers
// through (spec §6.3: "optional OpenAI-Organization, OpenAI-Project"),
// skipping hop-by-hop and content headers the client sets itself.
func applyForwardedHeaders(req *http.Request, headers http.Header) {
	for _, name := range []string{"OpenAI-Organization", "OpenAI-Project", "anthropic-beta", "anthropic-version"} {
		if v := headers.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
}
