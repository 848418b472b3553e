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

// MistralClient speaks Mistral's chat completions API (spec §6.2 last
// row), which is OpenAI-wire-compatible plus safe_prompt/random_seed.
type MistralClient struct {
	*baseClient
	id string
}

func NewMistralClient(id, baseURL string, timeout time.Duration) *MistralClient {
	return &MistralClient{baseClient: newBaseClient(baseURL, timeout), id: id}
}

func (c *MistralClient) ID() string { return c.id }

func (c *MistralClient) Formats() []universal.ProviderFormat {
	return []universal.ProviderFormat{universal.FormatMistral}
}

func (c *MistralClient) Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, mistralChatURL(c.baseURL), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	a.ApplyHeaders(req.Header)

	return c.do(req)
}

func (c *MistralClient) CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, mistralChatURL(c.baseURL), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	a.ApplyHeaders(req.Header)
	req.Header.Set("Accept", "text/event-stream")

	return c.doStream(req)
}
