package handlers

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/davincible/llm-router-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSelectModel_DynamicProviderSelection(t *testing.T) {
	handler := &ProxyHandler{logger: testLogger()}

	routerConfig := &config.RouterConfig{
		Default:     "default,claude-3-5-sonnet",
		LongContext: "longcontext,claude-3-opus",
		Think:       "think,claude-3-5-sonnet",
		WebSearch:   "websearch,claude-3-5-sonnet:online",
		Background:  "background,claude-3-5-haiku",
	}

	testCases := []struct {
		name          string
		inputModel    string
		tokens        int
		expectedModel string
		expectedBody  string
		description   string
	}{
		{
			name:          "explicit provider with comma",
			inputModel:    "openrouter,anthropic/claude-sonnet-4",
			tokens:        1000,
			expectedModel: "anthropic/claude-sonnet-4",
			expectedBody:  "anthropic/claude-sonnet-4",
			description:   "should use explicit provider/model when comma format is used",
		},
		{
			name:          "explicit provider overrides long context",
			inputModel:    "openrouter,anthropic/claude-sonnet-4",
			tokens:        70000,
			expectedModel: "anthropic/claude-sonnet-4",
			expectedBody:  "anthropic/claude-sonnet-4",
			description:   "should prioritize explicit provider over automatic routing",
		},
		{
			name:          "automatic routing for long context",
			inputModel:    "claude-3-5-sonnet",
			tokens:        70000,
			expectedModel: "claude-3-opus",
			expectedBody:  "claude-3-opus",
			description:   "should use long context routing for high token count",
		},
		{
			name:          "automatic routing for haiku background",
			inputModel:    "claude-3-5-haiku",
			tokens:        1000,
			expectedModel: "claude-3-5-haiku",
			expectedBody:  "claude-3-5-haiku",
			description:   "should use background routing for haiku model",
		},
		{
			name:          "passthrough falls to think rule",
			inputModel:    "claude-3-5-sonnet",
			tokens:        1000,
			expectedModel: "claude-3-5-sonnet",
			expectedBody:  "claude-3-5-sonnet",
			description:   "should use think routing when no other rules apply",
		},
		{
			name:          "online suffix preservation",
			inputModel:    "openrouter,anthropic/claude-sonnet-4:online",
			tokens:        1000,
			expectedModel: "anthropic/claude-sonnet-4:online",
			expectedBody:  "anthropic/claude-sonnet-4:online",
			description:   "should preserve :online suffix for web search",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			requestBody := map[string]interface{}{
				"model":      tc.inputModel,
				"messages":   []interface{}{},
				"max_tokens": 100,
			}

			inputBody, err := json.Marshal(requestBody)
			require.NoError(t, err)

			resultBody, selectedModel := handler.selectModel(inputBody, tc.tokens, routerConfig)

			assert.Equal(t, tc.expectedModel, selectedModel, tc.description)

			var parsedResult map[string]interface{}
			err = json.Unmarshal(resultBody, &parsedResult)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedBody, parsedResult["model"], "request body should contain the final model name")
		})
	}
}

func TestSelectModel_NoModelProvided(t *testing.T) {
	handler := &ProxyHandler{logger: testLogger()}

	routerConfig := &config.RouterConfig{
		Default: "default,claude-3-5-sonnet",
	}

	requestBody := map[string]interface{}{
		"messages":   []interface{}{},
		"max_tokens": 100,
	}

	inputBody, err := json.Marshal(requestBody)
	require.NoError(t, err)

	resultBody, selectedModel := handler.selectModel(inputBody, 1000, routerConfig)

	assert.Equal(t, "claude-3-5-sonnet", selectedModel)

	var parsedResult map[string]interface{}
	err = json.Unmarshal(resultBody, &parsedResult)
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-sonnet", parsedResult["model"])
}

func TestRequestWantsStream(t *testing.T) {
	assert.True(t, requestWantsStream([]byte(`{"model":"m","stream":true}`)))
	assert.False(t, requestWantsStream([]byte(`{"model":"m","stream":false}`)))
	assert.False(t, requestWantsStream([]byte(`{"model":"m"}`)))
	assert.False(t, requestWantsStream([]byte(`not json`)))
}

func TestCountInputTokens(t *testing.T) {
	handler := &ProxyHandler{logger: testLogger()}

	assert.Equal(t, 0, handler.countInputTokens(""))
	assert.Greater(t, handler.countInputTokens("hello world, this is a test sentence"), 0)
}
