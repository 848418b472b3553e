package bedrock

import (
	"fmt"

	"github.com/davincible/llm-router-go/internal/convert"
	"github.com/davincible/llm-router-go/internal/universal"
)

// RequestToUniversal converts a typed Converse request into the universal
// pivot (§4.2.6).
func RequestToUniversal(model string, req ConverseRequest) (universal.UniversalRequest, error) {
	var messages []universal.Message

	if len(req.System) > 0 {
		text := ""
		for _, s := range req.System {
			text += s.Text
		}

		messages = append(messages, universal.NewSystemMessage(universal.PlainUserContent(text)))
	}

	converted, err := convert.FlatSlice(req.Messages, func(m Message) ([]universal.Message, error) {
		ms, err := messageToUniversal(m)
		if err != nil {
			return nil, fmt.Errorf("convert message (role=%s): %w", m.Role, err)
		}

		return ms, nil
	})
	if err != nil {
		return universal.UniversalRequest{}, err
	}

	messages = append(messages, converted...)

	params := universal.NewUniversalParams()

	if ic := req.InferenceConfig; ic != nil {
		params.MaxTokens = ic.MaxTokens
		params.Temperature = ic.Temperature
		params.TopP = ic.TopP
		params.Stop = ic.StopSequences
	}

	if tc := req.ToolConfig; tc != nil {
		for _, t := range tc.Tools {
			params.Tools = append(params.Tools, universal.UniversalTool{
				Name:        t.ToolSpec.Name,
				Description: t.ToolSpec.Description,
				Parameters:  t.ToolSpec.InputSchema.JSON,
			})
		}

		if tc.ToolChoice != nil {
			params.ToolChoice = toolChoiceToUniversal(*tc.ToolChoice)
		}
	}

	return universal.UniversalRequest{Model: model, Messages: messages, Params: params}, nil
}

func toolChoiceToUniversal(tc ToolChoice) *universal.ToolChoice {
	switch {
	case tc.Tool != nil:
		return &universal.ToolChoice{Mode: "named", Name: tc.Tool.Name}
	case tc.Any != nil:
		return &universal.ToolChoice{Mode: "required"}
	default:
		return &universal.ToolChoice{Mode: "auto"}
	}
}

func messageToUniversal(m Message) ([]universal.Message, error) {
	isAssistant := m.Role == "assistant"

	var toolResults []universal.ToolContentPart

	var userParts []universal.UserContentPart

	var assistantParts []universal.AssistantContentPart

	for _, b := range m.Content {
		switch {
		case b.ToolResult != nil:
			toolResults = append(toolResults, universal.ToolContentPart{
				ToolCallID: b.ToolResult.ToolUseID,
				Output:     toolResultContentToOutput(b.ToolResult.Content),
				IsError:    b.ToolResult.Status == "error",
			})
		case b.ToolUse != nil:
			assistantParts = append(assistantParts, universal.AssistantContentPart{
				Kind:       universal.AssistantPartToolCall,
				ToolCallID: b.ToolUse.ToolUseID,
				ToolName:   b.ToolUse.Name,
				Arguments:  universal.ValidArguments(b.ToolUse.Input),
			})
		case b.ReasoningContent != nil:
			rt := b.ReasoningContent.ReasoningText
			if rt == nil {
				continue
			}

			var sig *string
			if rt.Signature != "" {
				sig = &rt.Signature
			}

			assistantParts = append(assistantParts, universal.AssistantContentPart{Kind: universal.AssistantPartReasoning, Text: rt.Text, EncryptedContent: sig})
		case b.Image != nil:
			userParts = append(userParts, universal.UserContentPart{
				Kind:      universal.UserPartImage,
				ImageData: b.Image.Source.Bytes,
				MediaType: "image/" + b.Image.Format,
			})
		default:
			if isAssistant {
				assistantParts = append(assistantParts, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: b.Text})
			} else {
				userParts = append(userParts, universal.UserContentPart{Kind: universal.UserPartText, Text: b.Text})
			}
		}
	}

	var out []universal.Message

	if len(toolResults) > 0 {
		out = append(out, universal.NewToolMessage(toolResults))
	}

	if isAssistant {
		if len(assistantParts) > 0 {
			out = append(out, universal.NewAssistantMessage(universal.PartsAssistantContent(assistantParts), ""))
		}
	} else if len(userParts) > 0 {
		if len(userParts) == 1 && userParts[0].Kind == universal.UserPartText {
			out = append(out, universal.NewUserMessage(universal.PlainUserContent(userParts[0].Text)))
		} else {
			out = append(out, universal.NewUserMessage(universal.PartsUserContent(userParts)))
		}
	}

	return out, nil
}

func toolResultContentToOutput(parts []ToolResultContentPart) any {
	if len(parts) == 1 && parts[0].Text != "" {
		return parts[0].Text
	}

	text := ""
	for _, p := range parts {
		if p.Text != "" {
			text += p.Text
		} else if p.JSON != nil {
			return p.JSON
		}
	}

	return text
}

// RequestFromUniversal serializes the universal pivot into a Bedrock
// Converse request body.
func RequestFromUniversal(req universal.UniversalRequest) (ConverseRequest, error) {
	var cr ConverseRequest

	var pendingToolResults []universal.ToolContentPart

	for _, m := range req.Messages {
		switch m.Kind {
		case universal.MessageSystem, universal.MessageDeveloper:
			cr.System = append(cr.System, SystemBlock{Text: m.Content.Text})
		case universal.MessageTool:
			pendingToolResults = append(pendingToolResults, m.ToolParts...)
		case universal.MessageUser:
			blocks := userContentToBlocks(m.Content)

			if len(pendingToolResults) > 0 {
				for _, tr := range pendingToolResults {
					blocks = append([]ContentBlock{toolResultBlock(tr)}, blocks...)
				}

				pendingToolResults = nil
			}

			cr.Messages = append(cr.Messages, Message{Role: "user", Content: blocks})
		case universal.MessageAssistant:
			if len(pendingToolResults) > 0 {
				var blocks []ContentBlock
				for _, tr := range pendingToolResults {
					blocks = append(blocks, toolResultBlock(tr))
				}

				cr.Messages = append(cr.Messages, Message{Role: "user", Content: blocks})
				pendingToolResults = nil
			}

			cr.Messages = append(cr.Messages, Message{Role: "assistant", Content: assistantContentToBlocks(m.Assistant)})
		}
	}

	if len(pendingToolResults) > 0 {
		var blocks []ContentBlock
		for _, tr := range pendingToolResults {
			blocks = append(blocks, toolResultBlock(tr))
		}

		cr.Messages = append(cr.Messages, Message{Role: "user", Content: blocks})
	}

	ic := &InferenceConfig{StopSequences: req.Params.Stop}
	if req.Params.MaxTokens != nil {
		ic.MaxTokens = req.Params.MaxTokens
	} else {
		v := 4096
		ic.MaxTokens = &v
	}

	ic.Temperature = req.Params.Temperature
	ic.TopP = req.Params.TopP
	cr.InferenceConfig = ic

	if len(req.Params.Tools) > 0 {
		tc := &ToolConfig{}

		for _, t := range req.Params.Tools {
			tc.Tools = append(tc.Tools, ToolSpecWrapper{ToolSpec: ToolSpec{Name: t.Name, Description: t.Description, InputSchema: InputSchema{JSON: t.Parameters}}})
		}

		if req.Params.ToolChoice != nil {
			tc.ToolChoice = toolChoiceFromUniversal(req.Params.ToolChoice)
		}

		cr.ToolConfig = tc
	}

	return cr, nil
}

func toolChoiceFromUniversal(tc *universal.ToolChoice) *ToolChoice {
	switch tc.Mode {
	case "required":
		return &ToolChoice{Any: &struct{}{}}
	case "named":
		return &ToolChoice{Tool: &ToolChoiceName{Name: tc.Name}}
	default:
		return &ToolChoice{Auto: &struct{}{}}
	}
}

func toolResultBlock(tr universal.ToolContentPart) ContentBlock {
	status := "success"
	if tr.IsError {
		status = "error"
	}

	var content []ToolResultContentPart

	if s, ok := tr.Output.(string); ok {
		content = []ToolResultContentPart{{Text: s}}
	} else {
		content = []ToolResultContentPart{{JSON: tr.Output}}
	}

	return ContentBlock{ToolResult: &ToolResultBlock{ToolUseID: tr.ToolCallID, Content: content, Status: status}}
}

func userContentToBlocks(c universal.UserContent) []ContentBlock {
	if c.IsPlain() {
		return []ContentBlock{{Text: c.Text}}
	}

	out := make([]ContentBlock, 0, len(c.Parts))

	for _, p := range c.Parts {
		switch p.Kind {
		case universal.UserPartText:
			out = append(out, ContentBlock{Text: p.Text})
		case universal.UserPartImage:
			format := "png"
			if p.MediaType != "" {
				format = mediaTypeToFormat(p.MediaType)
			}

			out = append(out, ContentBlock{Image: &ImageBlock{Format: format, Source: ImageSource{Bytes: p.ImageData}}})
		default:
			out = append(out, ContentBlock{Text: p.Text})
		}
	}

	return out
}

func mediaTypeToFormat(mediaType string) string {
	for i := len(mediaType) - 1; i >= 0; i-- {
		if mediaType[i] == '/' {
			return mediaType[i+1:]
		}
	}

	return mediaType
}

func assistantContentToBlocks(c universal.AssistantContent) []ContentBlock {
	if c.IsPlain() {
		if c.Text == "" {
			return nil
		}

		return []ContentBlock{{Text: c.Text}}
	}

	out := make([]ContentBlock, 0, len(c.Parts))

	for _, p := range c.Parts {
		switch p.Kind {
		case universal.AssistantPartText:
			out = append(out, ContentBlock{Text: p.Text})
		case universal.AssistantPartReasoning:
			sig := ""
			if p.EncryptedContent != nil {
				sig = *p.EncryptedContent
			}

			out = append(out, ContentBlock{ReasoningContent: &ReasoningContentBlock{ReasoningText: &ReasoningText{Text: p.Text, Signature: sig}}})
		case universal.AssistantPartToolCall:
			input, _ := p.Arguments.Object()
			out = append(out, ContentBlock{ToolUse: &ToolUseBlock{ToolUseID: p.ToolCallID, Name: p.ToolName, Input: input}})
		}
	}

	return out
}

// ResponseToUniversal converts a typed Converse response into the
// universal pivot.
func ResponseToUniversal(model string, resp ConverseResponse) (universal.UniversalResponse, error) {
	var messages []universal.Message

	if resp.Output != nil && resp.Output.Message != nil {
		ms, err := messageToUniversal(*resp.Output.Message)
		if err != nil {
			return universal.UniversalResponse{}, err
		}

		messages = ms
	}

	ur := universal.UniversalResponse{Model: model, Messages: messages}
	ur.FinishReason = stopReasonToUniversal(resp.StopReason)

	if resp.Output != nil && resp.Output.Message != nil && hasToolUse(resp.Output.Message.Content) {
		ur.FinishReason = &universal.FinishReason{Kind: universal.FinishToolCalls}
	}

	if resp.Usage != nil {
		in, out, total := resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens
		ur.Usage = &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}
	}

	return ur, nil
}

func hasToolUse(blocks []ContentBlock) bool {
	for _, b := range blocks {
		if b.ToolUse != nil {
			return true
		}
	}

	return false
}

func stopReasonToUniversal(reason string) *universal.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return &universal.FinishReason{Kind: universal.FinishStop}
	case "max_tokens":
		return &universal.FinishReason{Kind: universal.FinishLength}
	case "tool_use":
		return &universal.FinishReason{Kind: universal.FinishToolCalls}
	case "content_filtered", "guardrail_intervened":
		return &universal.FinishReason{Kind: universal.FinishContentFilter}
	case "":
		return nil
	default:
		return &universal.FinishReason{Kind: universal.FinishOther, Other: reason}
	}
}

func finishReasonToStopReason(fr *universal.FinishReason) string {
	if fr == nil {
		return "end_turn"
	}

	switch fr.Kind {
	case universal.FinishStop:
		return "end_turn"
	case universal.FinishLength:
		return "max_tokens"
	case universal.FinishToolCalls:
		return "tool_use"
	case universal.FinishContentFilter:
		return "content_filtered"
	default:
		return fr.Other
	}
}

// ResponseFromUniversal serializes a universal response into a Bedrock
// Converse response body.
func ResponseFromUniversal(resp universal.UniversalResponse) (ConverseResponse, error) {
	cr := ConverseResponse{StopReason: finishReasonToStopReason(resp.FinishReason)}

	var blocks []ContentBlock

	for _, m := range resp.Messages {
		if m.Kind != universal.MessageAssistant {
			continue
		}

		blocks = append(blocks, assistantContentToBlocks(m.Assistant)...)
	}

	cr.Output = &OutputWrapper{Message: &Message{Role: "assistant", Content: blocks}}

	if resp.Usage != nil {
		u := &TokenUsage{}
		if resp.Usage.InputTokens != nil {
			u.InputTokens = *resp.Usage.InputTokens
		}

		if resp.Usage.OutputTokens != nil {
			u.OutputTokens = *resp.Usage.OutputTokens
		}

		if resp.Usage.TotalTokens != nil {
			u.TotalTokens = *resp.Usage.TotalTokens
		}

		cr.Usage = u
	}

	return cr, nil
}
