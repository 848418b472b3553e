package openai

import (
	"strings"

	"github.com/davincible/llm-router-go/internal/llmerrors"
)

var reasoningModelPrefixes = []string{"o1", "o2", "o3", "o4", "gpt-5"}

var legacyO1Models = map[string]bool{
	"o1-preview":            true,
	"o1-mini":               true,
	"o1-preview-2024-09-12": true,
}

var proCodexModels = []string{"gpt-5-pro", "gpt-5.1-codex", "o1-pro", "o3-pro"}

var nativeStructuredOutputPrefixes = []string{"gpt", "o1", "o3"}

func isReasoningModel(model string) bool {
	for _, p := range reasoningModelPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}

func IsLegacyO1(model string) bool {
	return legacyO1Models[model]
}

// RequiresResponsesAPI reports whether the model's capability rule (§4.2.7)
// forces a Chat-Completions-shaped request onto the Responses wire format.
func RequiresResponsesAPI(model string) bool {
	for _, p := range proCodexModels {
		if model == p || strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}

func supportsNativeStructuredOutput(model string, targetIsFireworks bool) bool {
	if targetIsFireworks {
		return true
	}

	for _, p := range nativeStructuredOutputPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}

// ApplyCapabilityRules rewrites a ChatRequest in place per spec §4.2.7,
// before it is serialized to the wire. The target flags select the
// provider-specific rules: targetIsFireworks widens native structured-output
// support, targetIsMistral drops stream_options and parallel_tool_calls,
// and targetIsAzure drops parallel_tool_calls (and seed as well when
// azureHasAPIVersion is set).
func ApplyCapabilityRules(req *ChatRequest, targetIsFireworks, targetIsMistral, targetIsAzure, azureHasAPIVersion bool) error {
	if isReasoningModel(req.Model) || req.ReasoningEffort != "" {
		if req.MaxTokens != nil && req.MaxCompletionTokens == nil {
			req.MaxCompletionTokens = req.MaxTokens
			req.MaxTokens = nil
		}

		req.Temperature = nil
		req.ParallelToolCalls = nil
	}

	if IsLegacyO1(req.Model) {
		for i := range req.Messages {
			if req.Messages[i].Role == "system" || req.Messages[i].Role == "developer" {
				req.Messages[i].Role = "user"
			}
		}
	}

	if req.ResponseFormat != nil {
		kind, _ := req.ResponseFormat["type"].(string)
		if kind == "json_schema" {
			if !supportsNativeStructuredOutput(req.Model, targetIsFireworks) {
				if len(req.Tools) > 0 {
					return llmerrors.Unsupported("tools_with_structured_output")
				}

				schemaWrapper, _ := req.ResponseFormat["json_schema"].(map[string]any)
				schema, _ := schemaWrapper["schema"].(map[string]any)
				strict, _ := schemaWrapper["strict"].(bool)

				req.Tools = []ChatTool{{
					Type: "function",
					Function: ChatFunctionDef{
						Name:       "json",
						Parameters: schema,
						Strict:     strict,
					},
				}}
				req.ToolChoice = map[string]any{"type": "function", "function": map[string]any{"name": "json"}}
				req.ResponseFormat = nil
			}
		}
	}

	if targetIsMistral {
		req.StreamOptions = nil
		req.ParallelToolCalls = nil
	}

	if targetIsAzure {
		req.ParallelToolCalls = nil

		if azureHasAPIVersion {
			req.Seed = nil
		}
	}

	return nil
}

// NormalizeAzureDeployment applies the substring rewrite gpt-3.5 -> gpt-35
// used when building an Azure deployment path (§6.2).
func NormalizeAzureDeployment(deployment string) string {
	return strings.ReplaceAll(deployment, "gpt-3.5", "gpt-35")
}

// RewriteVertexModelPath collapses publishers/{org}/models/{name} to
// {org}/{name} for an OpenAI-style (openai-compatible / Vertex-openapi)
// target, per spec §6.6 scenario 6.
func RewriteVertexModelPath(model string) string {
	const prefix = "publishers/"

	if !strings.HasPrefix(model, prefix) {
		return model
	}

	rest := strings.TrimPrefix(model, prefix)

	parts := strings.SplitN(rest, "/models/", 2)
	if len(parts) != 2 {
		return model
	}

	return parts[0] + "/" + parts[1]
}
