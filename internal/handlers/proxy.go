package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/davincible/llm-router-go/internal/config"
	"github.com/davincible/llm-router-go/internal/llmerrors"
	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/router"
	"github.com/davincible/llm-router-go/internal/streaming"
	"github.com/davincible/llm-router-go/internal/transform"
	"github.com/davincible/llm-router-go/internal/universal"
)

// ProxyHandler is the single HTTP entrypoint: detect the caller's wire
// format, pick a target model via the router-config aliasing rules, run
// the request through router.Router, and translate the response back into
// the format the caller sent, streaming or not.
type ProxyHandler struct {
	config   *config.Manager
	registry *providers.Registry
	router   *router.Router
	logger   *slog.Logger
}

func NewProxyHandler(cfg *config.Manager, registry *providers.Registry, r *router.Router, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		config:   cfg,
		registry: registry,
		router:   r,
		logger:   logger,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.config.Get()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.httpError(w, http.StatusBadRequest, "failed to read request body: %v", err)
		return
	}

	callerFormat, ok := transform.DetectFormat(h.registry, body)
	if !ok {
		h.httpError(w, http.StatusBadRequest, "unrecognized request format")
		return
	}

	inputTokens := h.countInputTokens(string(body))

	transformedBody, modelName := h.selectModel(body, inputTokens, &cfg.Router)
	wantsStream := requestWantsStream(transformedBody)

	h.logger.Info("proxying request",
		"model", modelName,
		"caller_format", callerFormat,
		"input_tokens", inputTokens,
		"stream", wantsStream,
	)

	if wantsStream {
		h.serveStream(w, r, transformedBody, modelName, callerFormat)
		return
	}

	h.serveUnary(w, r, transformedBody, modelName, callerFormat)
}

func (h *ProxyHandler) serveUnary(w http.ResponseWriter, r *http.Request, body []byte, model string, callerFormat universal.ProviderFormat) {
	respBody, err := h.router.Complete(r.Context(), body, model, callerFormat, r.Header)
	if err != nil {
		h.writeRouterError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBody)
}

func (h *ProxyHandler) serveStream(w http.ResponseWriter, r *http.Request, body []byte, model string, callerFormat universal.ProviderFormat) {
	result, sourceFormat, err := h.router.CompleteStream(r.Context(), body, model, callerFormat, r.Header)
	if err != nil {
		h.writeRouterError(w, err)
		return
	}
	defer result.Body.Close()

	targetAdapter, ok := h.registry.Get(callerFormat)
	if !ok {
		h.httpError(w, http.StatusInternalServerError, "no adapter registered for caller format %s", callerFormat)
		return
	}

	sourceAdapter, ok := h.registry.Get(sourceFormat)
	if !ok {
		h.httpError(w, http.StatusInternalServerError, "no adapter registered for upstream format %s", sourceFormat)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	enc := streaming.NewSSEEncoder(flushWriter{w})
	sourceState := sourceAdapter.NewStreamState()
	targetState := targetAdapter.NewStreamState()

	var pumpErr error

	if sourceFormat == universal.FormatBedrock {
		pumpErr = streaming.PumpEventStream(streaming.NewEventStreamDecoder(result.Body), enc, sourceAdapter, targetAdapter, sourceState, targetState)
	} else {
		pumpErr = streaming.Pump(streaming.NewSSEDecoder(result.Body), enc, sourceAdapter, targetAdapter, sourceState, targetState)
	}

	if pumpErr != nil {
		h.logger.Error("stream pump failed", "error", pumpErr)
	}
}

func (h *ProxyHandler) writeRouterError(w http.ResponseWriter, err error) {
	llmErr, ok := llmerrors.As(err)
	if !ok {
		h.httpError(w, http.StatusBadGateway, "upstream request failed: %v", err)
		return
	}

	status := http.StatusBadGateway
	if llmErr.HTTPStatus != 0 {
		status = llmErr.HTTPStatus
	}

	h.logger.Error("router error", "kind", llmErr.Kind, "error", err)
	h.httpError(w, status, "%s", llmErr.Error())
}

// selectModel applies the teacher's routing-alias rules (explicit
// "provider,model" bypass, long-context/background/think/web-search
// keyword rules) and rewrites the body's "model" key, unchanged from the
// original except that the selected identifier is now a plain catalog
// model string rather than a "provider,model" pair — provider selection
// is the router's job now (spec §4.6).
func (h *ProxyHandler) selectModel(inputBody []byte, tokens int, routerConfig *config.RouterConfig) ([]byte, string) {
	var requestBody map[string]any
	if err := json.Unmarshal(inputBody, &requestBody); err != nil {
		h.logger.Error("failed to unmarshal request body for model selection", "error", err)

		fallback := routerConfig.Default
		if parts := strings.SplitN(fallback, ",", 2); len(parts) > 1 {
			fallback = parts[1]
		}

		return inputBody, fallback
	}

	var selectedModel string

	if model, ok := requestBody["model"].(string); ok && len(model) > 0 {
		if strings.Contains(model, ",") {
			selectedModel = model
		} else if tokens > 60000 && routerConfig.LongContext != "" {
			selectedModel = routerConfig.LongContext
		} else if strings.HasPrefix(model, "claude-3-5-haiku") && routerConfig.Background != "" {
			selectedModel = routerConfig.Background
		} else if routerConfig.Think != "" {
			selectedModel = routerConfig.Think
		} else if routerConfig.WebSearch != "" {
			selectedModel = routerConfig.WebSearch
		} else {
			selectedModel = model
		}
	} else {
		selectedModel = routerConfig.Default
	}

	finalModel := selectedModel
	if parts := strings.SplitN(selectedModel, ",", 2); len(parts) > 1 {
		finalModel = parts[1]
	}

	requestBody["model"] = finalModel

	updatedBody, err := json.Marshal(requestBody)
	if err != nil {
		h.logger.Error("failed to marshal updated request body", "error", err)
		return inputBody, finalModel
	}

	return updatedBody, finalModel
}

func (h *ProxyHandler) countInputTokens(text string) int {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		h.logger.Error("failed to get tiktoken encoding", "error", err)
		return 0
	}

	return len(tke.Encode(text, nil, nil))
}

func (h *ProxyHandler) httpError(w http.ResponseWriter, code int, format string, args ...interface{}) {
	h.logger.Error("request failed", "status", code)
	http.Error(w, fmt.Sprintf(format, args...), code)
}

func requestWantsStream(body []byte) bool {
	var shape struct {
		Stream bool `json:"stream"`
	}

	if err := json.Unmarshal(body, &shape); err != nil {
		return false
	}

	return shape.Stream
}

// flushWriter flushes after every write when the underlying ResponseWriter
// supports it, so SSE frames reach the client as they're produced rather
// than batched.
type flushWriter struct {
	w http.ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if flusher, ok := f.w.(http.Flusher); ok {
		flusher.Flush()
	}

	return n, err
}
