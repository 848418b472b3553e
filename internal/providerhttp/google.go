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

// GoogleClient speaks the Gemini generateContent API (spec §6.2 row 5).
// The same client shape also serves Vertex's generative-model endpoint
// (spec §6.2 row 6); a Vertex deployment is just a GoogleClient pointed at
// the Vertex base URL and keyed under its own alias, per router.go's
// alias/format-slot model (the "vertex" alias test scenario in
// router_test.go).
type GoogleClient struct {
	*baseClient
	id string
}

func NewGoogleClient(id, baseURL string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{baseClient: newBaseClient(baseURL, timeout), id: id}
}

func (c *GoogleClient) ID() string { return c.id }

func (c *GoogleClient) Formats() []universal.ProviderFormat {
	return []universal.ProviderFormat{universal.FormatGoogle}
}

func (c *GoogleClient) Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, googleGenerateContentURL(c.baseURL, spec.Model, false), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	applyGoogleAuth(req, a)

	return c.do(req)
}

func (c *GoogleClient) CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, googleGenerateContentURL(c.baseURL, spec.Model, true), payload)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	applyGoogleAuth(req, a)

	return c.doStream(req)
}

// applyGoogleAuth prefers x-goog-api-key (spec §6.3: "typically via
// x-goog-api-key or Bearer per AuthConfig"), matching the teacher's
// setAuthHeader Gemini special case, falling back to whatever
// AuthConfig.ApplyHeaders would do for a non-ApiKey auth kind.
func applyGoogleAuth(req *http.Request, a auth.Config) {
	if a.Kind == auth.KindAPIKey {
		req.Header.Set("x-goog-api-key", a.Key)
		return
	}

	a.ApplyHeaders(req.Header)
}
