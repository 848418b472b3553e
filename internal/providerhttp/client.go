// Package providerhttp implements the per-provider HTTP clients (spec
// §4.5, §6.2, §6.3): URL construction, header application, response
// decompression, and error classification into llmerrors, plus Bedrock's
// SigV4 request signing.
package providerhttp

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/davincible/llm-router-go/internal/llmerrors"
)

// baseClient is the shared transport every provider-specific client
// embeds: one pooled http.Client per process (spec §5 "shared resources"),
// with decompression and error classification factored out so each
// provider file only supplies URL/header construction.
type baseClient struct {
	httpClient *http.Client
	baseURL    string
}

func newBaseClient(baseURL string, timeout time.Duration) *baseClient {
	c := &http.Client{}
	if timeout > 0 {
		c.Timeout = timeout
	}

	return &baseClient{httpClient: c, baseURL: baseURL}
}

// do sends req and returns the (possibly decompressed) response body for a
// 200 response, or a classified *llmerrors.Error otherwise. The teacher's
// decompressReader (gzip/brotli) is reused verbatim for the body-reading
// half; retry-after floor extraction is new, grounded on bedrock.rs's
// extract_retry_after (spec §4.9).
func (c *baseClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}
	defer resp.Body.Close()

	bodyReader, err := decompressReader(resp)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	data, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	if resp.StatusCode != http.StatusOK {
		retryAfterS, hasRetryAfter := retryAfterFloor(resp)
		return nil, llmerrors.ProviderErr(c.baseURL, resp.StatusCode, string(data), resp.Header, retryAfterS, hasRetryAfter)
	}

	return data, nil
}

// doStream sends req and returns the raw response body reader for a 200
// streaming response, decompressed but otherwise unparsed; the caller
// (internal/streaming) performs the frame-level decode.
func (c *baseClient) doStream(req *http.Request) (io.ReadCloser, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llmerrors.Transport(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		retryAfterS, hasRetryAfter := retryAfterFloor(resp)

		return nil, llmerrors.ProviderErr(c.baseURL, resp.StatusCode, string(data), resp.Header, retryAfterS, hasRetryAfter)
	}

	bodyReader, err := decompressReader(resp)
	if err != nil {
		defer resp.Body.Close()
		return nil, llmerrors.Transport(err)
	}

	if rc, ok := bodyReader.(io.ReadCloser); ok {
		return rc, nil
	}

	return readCloserWrapper{Reader: bodyReader, closer: resp.Body}, nil
}

type readCloserWrapper struct {
	io.Reader
	closer io.Closer
}

func (w readCloserWrapper) Close() error { return w.closer.Close() }

// decompressReader mirrors the teacher's handlers/proxy.go
// decompressReader: gzip and brotli are the two content-encodings every
// provider in the pack may return.
func decompressReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// retryAfterFloor implements the 2-second floor on 429/5xx from
// bedrock.rs's extract_retry_after, generalized to every provider per
// spec §4.9. Parsing the Retry-After header itself is the documented open
// gap (SPEC_FULL.md §E.1) — only the floor is implemented.
func retryAfterFloor(resp *http.Response) (int, bool) {
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 2, true
	}

	return 0, false
}

func newJSONRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, newBodyReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))

	return req, nil
}
