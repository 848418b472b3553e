// Package bedrock implements the AWS Bedrock Converse API adapter
// (spec §4.2.6). Field names are camelCase per the Converse wire schema.
package bedrock

// ConverseRequest is the typed Bedrock Converse request schema. ModelId is
// carried in the URL path (§6.2), not this struct; it is included here only
// for round-tripping payloads that embed it explicitly.
type ConverseRequest struct {
	ModelID          string            `json:"modelId,omitempty"`
	Messages         []Message         `json:"messages"`
	System           []SystemBlock     `json:"system,omitempty"`
	InferenceConfig  *InferenceConfig  `json:"inferenceConfig,omitempty"`
	ToolConfig       *ToolConfig       `json:"toolConfig,omitempty"`
	GuardrailConfig  map[string]any    `json:"guardrailConfig,omitempty"`
	AdditionalModelRequestFields map[string]any `json:"additionalModelRequestFields,omitempty"`
}

type SystemBlock struct {
	Text string `json:"text"`
}

type Message struct {
	Role    string         `json:"role"` // "user" | "assistant"
	Content []ContentBlock `json:"content"`
}

// ContentBlock is the tagged-union Converse content block. Exactly one of
// the pointer fields is populated, matching the JSON's single-key-object
// convention (e.g. {"text": "..."} or {"toolUse": {...}}).
type ContentBlock struct {
	Text       string          `json:"text,omitempty"`
	Image      *ImageBlock     `json:"image,omitempty"`
	ToolUse    *ToolUseBlock   `json:"toolUse,omitempty"`
	ToolResult *ToolResultBlock `json:"toolResult,omitempty"`
	ReasoningContent *ReasoningContentBlock `json:"reasoningContent,omitempty"`
}

type ImageBlock struct {
	Format string      `json:"format"` // png | jpeg | gif | webp
	Source ImageSource `json:"source"`
}

type ImageSource struct {
	Bytes string `json:"bytes,omitempty"` // base64
}

type ToolUseBlock struct {
	ToolUseID string         `json:"toolUseId"`
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
}

type ToolResultBlock struct {
	ToolUseID string                 `json:"toolUseId"`
	Content   []ToolResultContentPart `json:"content"`
	Status    string                 `json:"status,omitempty"` // "success" | "error"
}

type ToolResultContentPart struct {
	Text string `json:"text,omitempty"`
	JSON any    `json:"json,omitempty"`
}

type ReasoningContentBlock struct {
	ReasoningText *ReasoningText `json:"reasoningText,omitempty"`
}

type ReasoningText struct {
	Text      string `json:"text"`
	Signature string `json:"signature,omitempty"`
}

type InferenceConfig struct {
	MaxTokens     *int     `json:"maxTokens,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type ToolConfig struct {
	Tools      []ToolSpecWrapper `json:"tools,omitempty"`
	ToolChoice *ToolChoice       `json:"toolChoice,omitempty"`
}

type ToolSpecWrapper struct {
	ToolSpec ToolSpec `json:"toolSpec"`
}

type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema InputSchema    `json:"inputSchema"`
}

type InputSchema struct {
	JSON map[string]any `json:"json"`
}

// ToolChoice is {"auto":{}} | {"any":{}} | {"tool":{"name":"..."}}.
type ToolChoice struct {
	Auto *struct{}       `json:"auto,omitempty"`
	Any  *struct{}       `json:"any,omitempty"`
	Tool *ToolChoiceName `json:"tool,omitempty"`
}

type ToolChoiceName struct {
	Name string `json:"name"`
}

// ConverseResponse is the typed Bedrock Converse response schema.
type ConverseResponse struct {
	Output     *OutputWrapper `json:"output,omitempty"`
	StopReason string         `json:"stopReason,omitempty"`
	Usage      *TokenUsage    `json:"usage,omitempty"`
}

type OutputWrapper struct {
	Message *Message `json:"message,omitempty"`
}

type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// ConverseStreamEvent is the union of Converse stream event shapes, each
// keyed by its own top-level field per the Converse streaming protocol
// (messageStart/contentBlockStart/contentBlockDelta/contentBlockStop/
// messageStop/metadata).
type ConverseStreamEvent struct {
	MessageStart      *MessageStartEvent      `json:"messageStart,omitempty"`
	ContentBlockStart *ContentBlockStartEvent `json:"contentBlockStart,omitempty"`
	ContentBlockDelta *ContentBlockDeltaEvent `json:"contentBlockDelta,omitempty"`
	ContentBlockStop  *ContentBlockStopEvent  `json:"contentBlockStop,omitempty"`
	MessageStop       *MessageStopEvent       `json:"messageStop,omitempty"`
	Metadata          *MetadataEvent          `json:"metadata,omitempty"`
}

type MessageStartEvent struct {
	Role string `json:"role"`
}

type ContentBlockStartEvent struct {
	Start             *ContentBlockStartUnion `json:"start,omitempty"`
	ContentBlockIndex int                     `json:"contentBlockIndex"`
}

type ContentBlockDeltaEvent struct {
	Delta             ContentBlockDeltaUnion `json:"delta"`
	ContentBlockIndex int                    `json:"contentBlockIndex"`
}

type ContentBlockStopEvent struct {
	ContentBlockIndex int `json:"contentBlockIndex"`
}

type MessageStopEvent struct {
	StopReason string `json:"stopReason"`
}

type MetadataEvent struct {
	Usage *TokenUsage `json:"usage,omitempty"`
}

type ContentBlockStartUnion struct {
	ToolUse *ToolUseStart `json:"toolUse,omitempty"`
}

type ToolUseStart struct {
	ToolUseID string `json:"toolUseId"`
	Name      string `json:"name"`
}

type ContentBlockDeltaUnion struct {
	Text             string                 `json:"text,omitempty"`
	ToolUse          *ToolUseDelta          `json:"toolUse,omitempty"`
	ReasoningContent *ReasoningContentDelta `json:"reasoningContent,omitempty"`
}

type ToolUseDelta struct {
	Input string `json:"input"` // partial JSON fragment
}

type ReasoningContentDelta struct {
	Text      string `json:"text,omitempty"`
	Signature string `json:"signature,omitempty"`
}
