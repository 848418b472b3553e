package providerhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenAIChatURL(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", openAIChatURL("https://api.openai.com/v1"))
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", openAIChatURL("https://api.openai.com/v1/"))
}

func TestOpenAIResponsesURL(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/responses", openAIResponsesURL("https://api.openai.com/v1"))
}

func TestAnthropicMessagesURL(t *testing.T) {
	assert.Equal(t, "https://api.anthropic.com/v1/messages", anthropicMessagesURL("https://api.anthropic.com/v1"))
}

func TestGoogleGenerateContentURL(t *testing.T) {
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
		googleGenerateContentURL("https://generativelanguage.googleapis.com/v1beta", "gemini-2.5-flash", false))

	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:streamGenerateContent?alt=sse",
		googleGenerateContentURL("https://generativelanguage.googleapis.com/v1beta", "gemini-2.5-flash", true))
}

func TestMistralChatURL(t *testing.T) {
	assert.Equal(t, "https://api.mistral.ai/v1/chat/completions", mistralChatURL("https://api.mistral.ai/v1"))
}

func TestBedrockConverseURL(t *testing.T) {
	base := "https://bedrock-runtime.us-east-1.amazonaws.com"

	assert.Equal(t, base+"/model/anthropic.claude-3-opus/converse", bedrockConverseURL(base, "anthropic.claude-3-opus", false))
	assert.Equal(t, base+"/model/anthropic.claude-3-opus/converse-stream", bedrockConverseURL(base, "anthropic.claude-3-opus", true))
}

func TestBedrockInvokeURL(t *testing.T) {
	base := "https://bedrock-runtime.us-east-1.amazonaws.com"

	assert.Equal(t, base+"/model/anthropic.claude-3-opus/invoke", bedrockInvokeURL(base, "anthropic.claude-3-opus", false))
	assert.Equal(t, base+"/model/anthropic.claude-3-opus/invoke-with-response-stream", bedrockInvokeURL(base, "anthropic.claude-3-opus", true))
}
