package providerhttp

import "strings"

// openAIChatURL appends the Chat Completions path (spec §6.2 row 1).
func openAIChatURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}

// openAIResponsesURL appends the Responses API path (spec §6.2 row 2).
func openAIResponsesURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/responses"
}

// anthropicMessagesURL appends the Messages path (spec §6.2 row 4).
func anthropicMessagesURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/messages"
}

// googleGenerateContentURL builds the Gemini {models/<model>}:generateContent
// or :streamGenerateContent?alt=sse URL (spec §6.2 row 5), grounded on the
// teacher's buildEndpointURL Gemini special-case.
func googleGenerateContentURL(base, model string, streaming bool) string {
	base = strings.TrimSuffix(base, "/")

	verb := "generateContent"
	suffix := ""

	if streaming {
		verb = "streamGenerateContent"
		suffix = "?alt=sse"
	}

	if strings.HasSuffix(base, "/models") {
		return base + "/" + model + ":" + verb + suffix
	}

	return base + "/models/" + model + ":" + verb + suffix
}

// mistralChatURL appends the Chat Completions path (spec §6.2 last row).
func mistralChatURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}

// bedrockConverseURL builds the native Converse path (spec §6.2 Bedrock
// converse row), used when the model's target format is the Bedrock
// Converse wire shape.
func bedrockConverseURL(base, model string, streaming bool) string {
	base = strings.TrimSuffix(base, "/")

	if streaming {
		return base + "/model/" + model + "/converse-stream"
	}

	return base + "/model/" + model + "/converse"
}

// bedrockInvokeURL builds the Anthropic-on-Bedrock invoke path (spec §6.2
// Bedrock anthropic row), used when an Anthropic-format model is hosted on
// Bedrock (original grounded on bedrock.rs: spec.format == Anthropic
// selects invoke over converse).
func bedrockInvokeURL(base, model string, streaming bool) string {
	base = strings.TrimSuffix(base, "/")

	if streaming {
		return base + "/model/" + model + "/invoke-with-response-stream"
	}

	return base + "/model/" + model + "/invoke"
}
