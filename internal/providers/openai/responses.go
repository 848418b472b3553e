package openai

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/davincible/llm-router-go/internal/universal"
)

// ResponsesRequest is the typed OpenAI Responses API request schema
// (spec §4.2.2).
type ResponsesRequest struct {
	Model             string               `json:"model"`
	Input             any                  `json:"input"`
	Instructions      string               `json:"instructions,omitempty"`
	MaxOutputTokens   *int                 `json:"max_output_tokens,omitempty"`
	Temperature       *float64             `json:"temperature,omitempty"`
	TopP              *float64             `json:"top_p,omitempty"`
	Stream            bool                 `json:"stream,omitempty"`
	Tools             []ResponsesTool      `json:"tools,omitempty"`
	ToolChoice        any                  `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool                `json:"parallel_tool_calls,omitempty"`
	Reasoning         *ResponsesReasoning  `json:"reasoning,omitempty"`
	Text              *ResponsesTextFormat `json:"text,omitempty"`
	Store             *bool                `json:"store,omitempty"`
	Metadata          map[string]any       `json:"metadata,omitempty"`
}

type ResponsesReasoning struct {
	Effort       string `json:"effort,omitempty"`
	BudgetTokens *int   `json:"budget_tokens,omitempty"`
}

type ResponsesTextFormat struct {
	Format map[string]any `json:"format,omitempty"`
}

type ResponsesInputItem struct {
	Type    string `json:"type,omitempty"` // "message" (default), "function_call", "function_call_output", "reasoning"
	Role    string `json:"role,omitempty"`
	Content any    `json:"content,omitempty"`

	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	Output string `json:"output,omitempty"`

	Summary          []ResponsesReasoningSummary `json:"summary,omitempty"`
	EncryptedContent string                      `json:"encrypted_content,omitempty"`
}

type ResponsesReasoningSummary struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ResponsesContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type ResponsesTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type ResponsesResponse struct {
	ID     string                `json:"id"`
	Model  string                `json:"model"`
	Status string                `json:"status"`
	Output []ResponsesOutputItem `json:"output"`
	Usage  *ResponsesUsage       `json:"usage,omitempty"`
}

type ResponsesOutputItem struct {
	Type             string                      `json:"type"`
	Role             string                      `json:"role,omitempty"`
	Content          []ResponsesContentPart      `json:"content,omitempty"`
	CallID           string                      `json:"call_id,omitempty"`
	Name             string                      `json:"name,omitempty"`
	Arguments        string                      `json:"arguments,omitempty"`
	Summary          []ResponsesReasoningSummary `json:"summary,omitempty"`
	EncryptedContent string                      `json:"encrypted_content,omitempty"`
}

type ResponsesUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	TotalTokens         int `json:"total_tokens"`
	OutputTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details,omitempty"`
}

func DetectResponsesRequest(payload []byte) bool {
	var req ResponsesRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}

	return req.Model != "" && req.Input != nil
}

func DetectResponsesResponse(payload []byte) bool {
	var resp ResponsesResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return false
	}

	return resp.Status != "" && len(resp.Output) > 0
}

// ResponsesRequestToUniversal converts a typed ResponsesRequest into the
// universal pivot, per spec §4.2.2.
func ResponsesRequestToUniversal(req ResponsesRequest) (universal.UniversalRequest, error) {
	var messages []universal.Message

	if req.Instructions != "" {
		messages = append(messages, universal.NewSystemMessage(universal.PlainUserContent(req.Instructions)))
	}

	switch input := req.Input.(type) {
	case string:
		messages = append(messages, universal.NewUserMessage(universal.PlainUserContent(input)))
	case []any:
		converted, err := responsesInputItemsToUniversal(input)
		if err != nil {
			return universal.UniversalRequest{}, err
		}

		messages = append(messages, converted...)
	}

	messages = mergeReasoningIntoFollowingAssistant(messages)

	params := universal.NewUniversalParams()
	params.Temperature = req.Temperature
	params.TopP = req.TopP
	params.MaxTokens = req.MaxOutputTokens
	params.Stream = req.Stream
	params.ParallelToolCalls = req.ParallelToolCalls
	params.Store = req.Store
	params.Metadata = req.Metadata

	if req.Instructions != "" {
		params.ExtrasFor(universal.FormatResponses)["instructions"] = req.Instructions
	}

	if req.Reasoning != nil {
		rc := &universal.ReasoningConfig{Effort: req.Reasoning.Effort}

		if req.Reasoning.BudgetTokens != nil {
			rc.HasBudget = true
			rc.BudgetTokens = *req.Reasoning.BudgetTokens
		} else if req.MaxOutputTokens != nil {
			// Budget computed relative to max_output_tokens when not explicit.
			rc.HasBudget = true
			rc.BudgetTokens = *req.MaxOutputTokens / 2
		}

		params.Reasoning = rc
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, universal.UniversalTool{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}

	if req.ToolChoice != nil {
		params.ToolChoice = toolChoiceToUniversal(req.ToolChoice)
	}

	if params.ToolChoice != nil && req.ParallelToolCalls != nil && !*req.ParallelToolCalls {
		params.ToolChoice.DisableParallel = true
	}

	if req.Text != nil && req.Text.Format != nil {
		params.ResponseFormat = responseFormatToUniversal(req.Text.Format)
	}

	return universal.UniversalRequest{Model: req.Model, Messages: messages, Params: params}, nil
}

func responsesInputItemsToUniversal(items []any) ([]universal.Message, error) {
	var out []universal.Message

	for _, raw := range items {
		b, err := json.Marshal(raw)
		if err != nil {
			continue
		}

		var item ResponsesInputItem
		if err := json.Unmarshal(b, &item); err != nil {
			continue
		}

		switch item.Type {
		case "function_call":
			args, _ := parseToolArguments(item.Arguments)
			out = append(out, universal.NewAssistantMessage(universal.PartsAssistantContent([]universal.AssistantContentPart{
				{Kind: universal.AssistantPartToolCall, ToolCallID: item.CallID, ToolName: item.Name, Arguments: args},
			}), ""))
		case "function_call_output":
			out = append(out, universal.NewToolMessage([]universal.ToolContentPart{
				{ToolCallID: item.CallID, Output: extractToolOutput(item.Output)},
			}))
		case "reasoning":
			text := ""
			for _, s := range item.Summary {
				text += s.Text
			}

			enc := item.EncryptedContent
			var encPtr *string
			if enc != "" {
				encPtr = &enc
			}

			out = append(out, universal.NewAssistantMessage(universal.PartsAssistantContent([]universal.AssistantContentPart{
				{Kind: universal.AssistantPartReasoning, Text: text, EncryptedContent: encPtr},
			}), ""))
		default: // "message" or unset
			role := item.Role
			if role == "" {
				role = "user"
			}

			content := responsesContentToUserContent(item.Content)

			switch role {
			case "assistant":
				out = append(out, universal.NewAssistantMessage(universal.PartsAssistantContent(userPartsToAssistantTextPart(content)), ""))
			case "system":
				out = append(out, universal.NewSystemMessage(content))
			case "developer":
				out = append(out, universal.NewDeveloperMessage(content))
			default:
				out = append(out, universal.NewUserMessage(content))
			}
		}
	}

	return out, nil
}

func userPartsToAssistantTextPart(c universal.UserContent) []universal.AssistantContentPart {
	if c.IsPlain() {
		return []universal.AssistantContentPart{{Kind: universal.AssistantPartText, Text: c.Text}}
	}

	var out []universal.AssistantContentPart

	for _, p := range c.Parts {
		if p.Kind == universal.UserPartText {
			out = append(out, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: p.Text})
		}
	}

	return out
}

func responsesContentToUserContent(content any) universal.UserContent {
	switch v := content.(type) {
	case string:
		return universal.PlainUserContent(v)
	case []any:
		var parts []universal.UserContentPart

		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}

			var part ResponsesContentPart
			if err := json.Unmarshal(b, &part); err != nil {
				continue
			}

			switch part.Type {
			case "input_text", "output_text":
				parts = append(parts, universal.UserContentPart{Kind: universal.UserPartText, Text: part.Text})
			case "input_image":
				parts = append(parts, universal.UserContentPart{Kind: universal.UserPartImage, ImageURL: part.ImageURL})
			}
		}

		return universal.PartsUserContent(parts)
	default:
		return universal.PlainUserContent("")
	}
}

// mergeReasoningIntoFollowingAssistant implements the §6.7 structural rule:
// an Assistant message composed exclusively of Reasoning parts immediately
// followed by another Assistant message is merged into one (reasoning
// first, then the subsequent content).
func mergeReasoningIntoFollowingAssistant(messages []universal.Message) []universal.Message {
	out := make([]universal.Message, 0, len(messages))

	for i := 0; i < len(messages); i++ {
		m := messages[i]

		if m.Kind == universal.MessageAssistant && isReasoningOnly(m) && i+1 < len(messages) && messages[i+1].Kind == universal.MessageAssistant {
			next := messages[i+1]
			merged := append(append([]universal.AssistantContentPart{}, m.Assistant.Parts...), nextParts(next)...)
			out = append(out, universal.NewAssistantMessage(universal.PartsAssistantContent(merged), next.ID))
			i++

			continue
		}

		out = append(out, m)
	}

	return out
}

func isReasoningOnly(m universal.Message) bool {
	if len(m.Assistant.Parts) == 0 {
		return false
	}

	for _, p := range m.Assistant.Parts {
		if p.Kind != universal.AssistantPartReasoning {
			return false
		}
	}

	return true
}

func nextParts(m universal.Message) []universal.AssistantContentPart {
	if m.Assistant.IsPlain() {
		return []universal.AssistantContentPart{{Kind: universal.AssistantPartText, Text: m.Assistant.Text}}
	}

	return m.Assistant.Parts
}

// ResponsesRequestFromUniversal serializes the universal pivot into the
// Responses API request shape. If the first message is a System message
// whose text matches a preserved "instructions" extra, it is removed
// before re-serialization (the extra becomes the top-level instructions
// field instead), per spec §4.2.2.
func ResponsesRequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	rr := ResponsesRequest{Model: req.Model}

	messages := req.Messages
	instructions, hadInstructions := req.Params.Extras[universal.FormatResponses]["instructions"].(string)

	if hadInstructions && len(messages) > 0 && messages[0].Kind == universal.MessageSystem && messages[0].Content.IsPlain() && messages[0].Content.Text == instructions {
		rr.Instructions = instructions
		messages = messages[1:]
	}

	items := make([]any, 0, len(messages))

	for _, m := range messages {
		items = append(items, messageToResponsesInputItems(m)...)
	}

	rr.Input = items

	p := req.Params
	rr.Temperature = p.Temperature
	rr.TopP = p.TopP
	rr.MaxOutputTokens = p.MaxTokens
	rr.Stream = p.Stream
	rr.ParallelToolCalls = p.ParallelToolCalls
	rr.Store = p.Store
	rr.Metadata = p.Metadata

	if p.Reasoning != nil {
		rc := &ResponsesReasoning{Effort: p.Reasoning.Effort}
		if p.Reasoning.HasBudget {
			b := p.Reasoning.BudgetTokens
			rc.BudgetTokens = &b
		}

		rr.Reasoning = rc
	}

	for _, t := range p.Tools {
		rr.Tools = append(rr.Tools, ResponsesTool{Type: "function", Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}

	if p.ToolChoice != nil {
		switch p.ToolChoice.Mode {
		case "named":
			rr.ToolChoice = map[string]any{"type": "function", "name": p.ToolChoice.Name}
		default:
			rr.ToolChoice = p.ToolChoice.Mode
		}
	}

	if p.ResponseFormat != nil {
		rr.Text = &ResponsesTextFormat{Format: map[string]any{
			"type":   p.ResponseFormat.Kind,
			"name":   p.ResponseFormat.Name,
			"schema": p.ResponseFormat.Schema,
			"strict": p.ResponseFormat.Strict,
		}}
	}

	return json.Marshal(rr)
}

func messageToResponsesInputItems(m universal.Message) []any {
	switch m.Kind {
	case universal.MessageSystem:
		return []any{ResponsesInputItem{Type: "message", Role: "system", Content: m.Content.Text}}
	case universal.MessageDeveloper:
		return []any{ResponsesInputItem{Type: "message", Role: "developer", Content: m.Content.Text}}
	case universal.MessageUser:
		return []any{ResponsesInputItem{Type: "message", Role: "user", Content: contentFromUserContent(m.Content)}}
	case universal.MessageAssistant:
		return assistantMessageToResponsesItems(m)
	case universal.MessageTool:
		out := make([]any, 0, len(m.ToolParts))

		for _, tp := range m.ToolParts {
			out = append(out, ResponsesInputItem{Type: "function_call_output", CallID: tp.ToolCallID, Output: toolOutputToString(tp.Output)})
		}

		return out
	default:
		return nil
	}
}

func assistantMessageToResponsesItems(m universal.Message) []any {
	if m.Assistant.IsPlain() {
		if m.Assistant.Text == "" {
			return nil
		}

		return []any{ResponsesInputItem{Type: "message", Role: "assistant", Content: m.Assistant.Text}}
	}

	var out []any

	var textParts []string

	for _, p := range m.Assistant.Parts {
		switch p.Kind {
		case universal.AssistantPartReasoning:
			enc := ""
			if p.EncryptedContent != nil {
				enc = *p.EncryptedContent
			}

			out = append(out, ResponsesInputItem{
				Type:             "reasoning",
				Summary:          []ResponsesReasoningSummary{{Type: "summary_text", Text: p.Text}},
				EncryptedContent: enc,
			})
		case universal.AssistantPartText:
			textParts = append(textParts, p.Text)
		case universal.AssistantPartToolCall:
			argsStr := "{}"

			if obj, ok := p.Arguments.Object(); ok {
				if b, err := json.Marshal(obj); err == nil {
					argsStr = string(b)
				}
			} else if raw, ok := p.Arguments.Raw(); ok {
				argsStr = raw
			}

			out = append(out, ResponsesInputItem{Type: "function_call", CallID: p.ToolCallID, Name: p.ToolName, Arguments: argsStr})
		}
	}

	if len(textParts) > 0 {
		joined := ""
		for _, t := range textParts {
			joined += t
		}

		out = append(out, ResponsesInputItem{Type: "message", Role: "assistant", Content: joined})
	}

	return out
}

// ResponsesResponseToUniversal converts a typed ResponsesResponse into the
// universal pivot.
func ResponsesResponseToUniversal(resp ResponsesResponse) (universal.UniversalResponse, error) {
	ur := universal.UniversalResponse{Model: resp.Model}

	var parts []universal.AssistantContentPart

	hasToolCall := false

	for _, item := range resp.Output {
		switch item.Type {
		case "reasoning":
			text := ""
			for _, s := range item.Summary {
				text += s.Text
			}

			parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartReasoning, Text: text})
		case "function_call":
			args, _ := parseToolArguments(item.Arguments)
			parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartToolCall, ToolCallID: item.CallID, ToolName: item.Name, Arguments: args})
			hasToolCall = true
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: c.Text})
				}
			}
		}
	}

	if len(parts) > 0 {
		ur.Messages = append(ur.Messages, universal.NewAssistantMessage(universal.PartsAssistantContent(parts), resp.ID))
	}

	if hasToolCall {
		ur.FinishReason = &universal.FinishReason{Kind: universal.FinishToolCalls}
	} else {
		ur.FinishReason = responsesStatusToFinishReason(resp.Status)
	}

	if resp.Usage != nil {
		in, out, total := resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens
		uu := &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

		if resp.Usage.OutputTokensDetails != nil {
			rt := resp.Usage.OutputTokensDetails.ReasoningTokens
			uu.ReasoningTokens = &rt
		}

		ur.Usage = uu
	}

	return ur, nil
}

func responsesStatusToFinishReason(status string) *universal.FinishReason {
	switch status {
	case "completed":
		return &universal.FinishReason{Kind: universal.FinishStop}
	case "incomplete":
		return &universal.FinishReason{Kind: universal.FinishLength}
	case "":
		return nil
	default:
		return &universal.FinishReason{Kind: universal.FinishOther, Other: status}
	}
}

func responsesFinishReasonToStatus(fr *universal.FinishReason) string {
	if fr == nil {
		return "completed"
	}

	switch fr.Kind {
	case universal.FinishLength:
		return "incomplete"
	case universal.FinishStop, universal.FinishToolCalls:
		return "completed"
	default:
		return "completed"
	}
}

// ResponsesResponseFromUniversal serializes a universal response into the
// Responses API response shape.
func ResponsesResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	rr := ResponsesResponse{ID: "resp_" + uuid.NewString(), Model: resp.Model, Status: responsesFinishReasonToStatus(resp.FinishReason)}

	for _, m := range resp.Messages {
		if m.Kind != universal.MessageAssistant {
			continue
		}

		for _, p := range m.Assistant.Parts {
			switch p.Kind {
			case universal.AssistantPartText:
				rr.Output = append(rr.Output, ResponsesOutputItem{Type: "message", Role: "assistant", Content: []ResponsesContentPart{{Type: "output_text", Text: p.Text}}})
			case universal.AssistantPartReasoning:
				rr.Output = append(rr.Output, ResponsesOutputItem{Type: "reasoning", Summary: []ResponsesReasoningSummary{{Type: "summary_text", Text: p.Text}}})
			case universal.AssistantPartToolCall:
				argsStr := "{}"
				if obj, ok := p.Arguments.Object(); ok {
					if b, err := json.Marshal(obj); err == nil {
						argsStr = string(b)
					}
				} else if raw, ok := p.Arguments.Raw(); ok {
					argsStr = raw
				}

				rr.Output = append(rr.Output, ResponsesOutputItem{Type: "function_call", CallID: p.ToolCallID, Name: p.ToolName, Arguments: argsStr})
			}
		}
	}

	if resp.Usage != nil {
		u := &ResponsesUsage{}

		if resp.Usage.InputTokens != nil {
			u.InputTokens = *resp.Usage.InputTokens
		}

		if resp.Usage.OutputTokens != nil {
			u.OutputTokens = *resp.Usage.OutputTokens
		}

		if resp.Usage.TotalTokens != nil {
			u.TotalTokens = *resp.Usage.TotalTokens
		}

		rr.Usage = u
	}

	return json.Marshal(rr)
}
