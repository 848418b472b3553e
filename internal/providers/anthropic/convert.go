package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/convert"
	"github.com/davincible/llm-router-go/internal/universal"
)

// RequestToUniversal converts a typed Anthropic Request into the universal
// pivot, per spec §4.2.4.
func RequestToUniversal(req Request) (universal.UniversalRequest, error) {
	var messages []universal.Message

	if sys := systemToUniversal(req.System); sys != nil {
		messages = append(messages, *sys)
	}

	converted, err := convert.FlatSlice(req.Messages, func(m Message) ([]universal.Message, error) {
		um, err := messageToUniversal(m)
		if err != nil {
			return nil, fmt.Errorf("convert message (role=%s): %w", m.Role, err)
		}

		return um, nil
	})
	if err != nil {
		return universal.UniversalRequest{}, err
	}

	messages = append(messages, converted...)

	params := universal.NewUniversalParams()
	maxTokens := req.MaxTokens
	params.MaxTokens = &maxTokens
	params.Temperature = req.Temperature
	params.TopP = req.TopP
	params.TopK = req.TopK
	params.Stop = req.StopSequences
	params.Stream = req.Stream
	params.Metadata = req.Metadata

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, universal.UniversalTool{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
	}

	if req.ToolChoice != nil {
		params.ToolChoice = toolChoiceToUniversal(req.ToolChoice)
	}

	return universal.UniversalRequest{Model: req.Model, Messages: messages, Params: params}, nil
}

func toolChoiceToUniversal(raw any) *universal.ToolChoice {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	kind, _ := m["type"].(string)

	tc := &universal.ToolChoice{}

	switch kind {
	case "auto":
		tc.Mode = "auto"
	case "any":
		tc.Mode = "required"
	case "none":
		tc.Mode = "none"
	case "tool":
		tc.Mode = "named"

		if name, ok := m["name"].(string); ok {
			tc.Name = name
		}
	default:
		return nil
	}

	if dp, ok := m["disable_parallel_tool_use"].(bool); ok {
		tc.DisableParallel = dp
	}

	return tc
}

func systemToUniversal(system any) *universal.Message {
	switch v := system.(type) {
	case string:
		if v == "" {
			return nil
		}

		m := universal.NewSystemMessage(universal.PlainUserContent(v))

		return &m
	case []any:
		var texts []string

		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}

			var block SystemBlock
			if err := json.Unmarshal(b, &block); err != nil {
				continue
			}

			texts = append(texts, block.Text)
		}

		joined := ""
		for _, t := range texts {
			joined += t
		}

		m := universal.NewSystemMessage(universal.PlainUserContent(joined))

		return &m
	default:
		return nil
	}
}

// messageToUniversal may split one Anthropic message into multiple
// universal messages (a user message containing tool_result blocks
// becomes a separate Tool message, per §4.2.4).
func messageToUniversal(m Message) ([]universal.Message, error) {
	blocks := contentToBlocks(m.Content)

	if m.Role == "user" {
		var toolResults []universal.ToolContentPart

		var userParts []universal.UserContentPart

		for _, b := range blocks {
			switch b.Type {
			case "tool_result":
				toolResults = append(toolResults, universal.ToolContentPart{
					ToolCallID: b.ToolUseID,
					Output:     toolResultOutput(b.Content),
					IsError:    b.IsError,
				})
			default:
				userParts = append(userParts, blockToUserPart(b))
			}
		}

		var out []universal.Message

		if len(toolResults) > 0 {
			out = append(out, universal.NewToolMessage(toolResults))
		}

		if len(userParts) > 0 {
			if len(userParts) == 1 && userParts[0].Kind == universal.UserPartText && blocksAreSingleText(blocks) {
				out = append(out, universal.NewUserMessage(universal.PlainUserContent(userParts[0].Text)))
			} else {
				out = append(out, universal.NewUserMessage(universal.PartsUserContent(userParts)))
			}
		}

		return out, nil
	}

	// assistant
	var parts []universal.AssistantContentPart

	for _, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: b.Text})
		case "thinking":
			var sig *string
			if b.Signature != "" {
				sig = &b.Signature
			}

			parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartReasoning, Text: b.Thinking, EncryptedContent: sig})
		case "tool_use":
			parts = append(parts, universal.AssistantContentPart{
				Kind:       universal.AssistantPartToolCall,
				ToolCallID: b.ID,
				ToolName:   b.Name,
				Arguments:  universal.ValidArguments(b.Input),
			})
		}
	}

	return []universal.Message{universal.NewAssistantMessage(universal.PartsAssistantContent(parts), "")}, nil
}

func blocksAreSingleText(blocks []ContentBlock) bool {
	return len(blocks) == 1 && blocks[0].Type == "text"
}

func toolResultOutput(content any) any {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var text string

		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}

			var block ContentBlock
			if err := json.Unmarshal(b, &block); err == nil && block.Type == "text" {
				text += block.Text
			}
		}

		return text
	default:
		return v
	}
}

func contentToBlocks(content any) []ContentBlock {
	switch v := content.(type) {
	case string:
		return []ContentBlock{{Type: "text", Text: v}}
	case []any:
		out := make([]ContentBlock, 0, len(v))

		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}

			var block ContentBlock
			if err := json.Unmarshal(b, &block); err != nil {
				continue
			}

			out = append(out, block)
		}

		return out
	default:
		return nil
	}
}

func blockToUserPart(b ContentBlock) universal.UserContentPart {
	switch b.Type {
	case "text":
		return universal.UserContentPart{Kind: universal.UserPartText, Text: b.Text}
	case "image":
		if b.Source == nil {
			return universal.UserContentPart{Kind: universal.UserPartImage}
		}

		if b.Source.Type == "url" {
			return universal.UserContentPart{Kind: universal.UserPartImage, ImageURL: b.Source.URL}
		}

		return universal.UserContentPart{Kind: universal.UserPartImage, ImageData: b.Source.Data, MediaType: b.Source.MediaType}
	default:
		return universal.UserContentPart{Kind: universal.UserPartText, Text: b.Text}
	}
}

// RequestFromUniversal serializes the universal pivot into the Anthropic
// Messages request shape. System/Developer messages are lifted to the
// top-level system field; only user/assistant roles appear in Messages.
func RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	ar := Request{Model: req.Model}

	if req.Params.MaxTokens != nil {
		ar.MaxTokens = *req.Params.MaxTokens
	} else {
		// max_tokens is required by Anthropic; inject a policy default
		// when the source format never required one (§8 scenario 2).
		ar.MaxTokens = 4096
	}

	ar.Temperature = req.Params.Temperature
	ar.TopP = req.Params.TopP
	ar.TopK = req.Params.TopK
	ar.StopSequences = req.Params.Stop
	ar.Stream = req.Params.Stream
	ar.Metadata = req.Params.Metadata

	var systemTexts []string

	var pendingToolResults []universal.ToolContentPart

	for _, m := range req.Messages {
		switch m.Kind {
		case universal.MessageSystem, universal.MessageDeveloper:
			systemTexts = append(systemTexts, m.Content.Text)
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

			ar.Messages = append(ar.Messages, Message{Role: "user", Content: blocksToContent(blocks)})
		case universal.MessageAssistant:
			if len(pendingToolResults) > 0 {
				// A Tool message must be represented as a user message
				// carrying tool_result blocks in Anthropic's wire format.
				var blocks []ContentBlock
				for _, tr := range pendingToolResults {
					blocks = append(blocks, toolResultBlock(tr))
				}

				ar.Messages = append(ar.Messages, Message{Role: "user", Content: blocksToContent(blocks)})
				pendingToolResults = nil
			}

			ar.Messages = append(ar.Messages, Message{Role: "assistant", Content: blocksToContent(assistantContentToBlocks(m.Assistant))})
		}
	}

	if len(pendingToolResults) > 0 {
		var blocks []ContentBlock
		for _, tr := range pendingToolResults {
			blocks = append(blocks, toolResultBlock(tr))
		}

		ar.Messages = append(ar.Messages, Message{Role: "user", Content: blocksToContent(blocks)})
	}

	if len(systemTexts) > 0 {
		joined := ""
		for _, t := range systemTexts {
			joined += t
		}

		ar.System = joined
	}

	for _, t := range req.Params.Tools {
		ar.Tools = append(ar.Tools, Tool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	if req.Params.ToolChoice != nil {
		ar.ToolChoice = toolChoiceFromUniversal(req.Params.ToolChoice)
	}

	return json.Marshal(ar)
}

func toolChoiceFromUniversal(tc *universal.ToolChoice) map[string]any {
	m := map[string]any{}

	switch tc.Mode {
	case "auto":
		m["type"] = "auto"
	case "required":
		m["type"] = "any"
	case "none":
		m["type"] = "none"
	case "named":
		m["type"] = "tool"
		m["name"] = tc.Name
	default:
		m["type"] = "auto"
	}

	if tc.DisableParallel {
		m["disable_parallel_tool_use"] = true
	}

	return m
}

func toolResultBlock(tr universal.ToolContentPart) ContentBlock {
	return ContentBlock{Type: "tool_result", ToolUseID: tr.ToolCallID, Content: toolOutputToContent(tr.Output), IsError: tr.IsError}
}

func toolOutputToContent(output any) any {
	if s, ok := output.(string); ok {
		return s
	}

	b, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf("%v", output)
	}

	return string(b)
}

func userContentToBlocks(c universal.UserContent) []ContentBlock {
	if c.IsPlain() {
		return []ContentBlock{{Type: "text", Text: c.Text}}
	}

	out := make([]ContentBlock, 0, len(c.Parts))

	for _, p := range c.Parts {
		out = append(out, userPartToBlock(p))
	}

	return out
}

func userPartToBlock(p universal.UserContentPart) ContentBlock {
	switch p.Kind {
	case universal.UserPartText:
		return ContentBlock{Type: "text", Text: p.Text}
	case universal.UserPartImage:
		if p.ImageURL != "" {
			return ContentBlock{Type: "image", Source: &ImageSource{Type: "url", URL: p.ImageURL}}
		}

		return ContentBlock{Type: "image", Source: &ImageSource{Type: "base64", Data: p.ImageData, MediaType: p.MediaType}}
	default:
		return ContentBlock{Type: "text", Text: p.Text}
	}
}

func assistantContentToBlocks(c universal.AssistantContent) []ContentBlock {
	if c.IsPlain() {
		if c.Text == "" {
			return nil
		}

		return []ContentBlock{{Type: "text", Text: c.Text}}
	}

	out := make([]ContentBlock, 0, len(c.Parts))

	for _, p := range c.Parts {
		switch p.Kind {
		case universal.AssistantPartText:
			out = append(out, ContentBlock{Type: "text", Text: p.Text})
		case universal.AssistantPartReasoning:
			sig := ""
			if p.EncryptedContent != nil {
				sig = *p.EncryptedContent
			}

			out = append(out, ContentBlock{Type: "thinking", Thinking: p.Text, Signature: sig})
		case universal.AssistantPartToolCall:
			input, _ := p.Arguments.Object()

			out = append(out, ContentBlock{Type: "tool_use", ID: p.ToolCallID, Name: p.ToolName, Input: input})
		}
	}

	return out
}

func blocksToContent(blocks []ContentBlock) any {
	if len(blocks) == 1 && blocks[0].Type == "text" {
		return blocks[0].Text
	}

	return blocks
}

// ResponseToUniversal converts a typed Response into the universal pivot.
// finish_reason is recomputed per §4.2.3: any ToolCall forces ToolCalls.
func ResponseToUniversal(resp Response) (universal.UniversalResponse, error) {
	um, err := messageToUniversal(Message{Role: "assistant", Content: blocksAsAny(resp.Content)})
	if err != nil {
		return universal.UniversalResponse{}, err
	}

	ur := universal.UniversalResponse{Model: resp.Model, Messages: um}

	reason := stopReasonToUniversal(resp.StopReason)
	if hasToolUse(resp.Content) {
		reason = &universal.FinishReason{Kind: universal.FinishToolCalls}
	}

	ur.FinishReason = reason

	in, out := resp.Usage.InputTokens, resp.Usage.OutputTokens
	total := in + out
	uu := &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

	if resp.Usage.CacheCreationInputTokens > 0 {
		v := resp.Usage.CacheCreationInputTokens
		uu.CacheCreationInputTokens = &v
	}

	if resp.Usage.CacheReadInputTokens > 0 {
		v := resp.Usage.CacheReadInputTokens
		uu.CacheReadInputTokens = &v
	}

	ur.Usage = uu

	return ur, nil
}

func blocksAsAny(blocks []ContentBlock) []any {
	out := make([]any, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}

	return out
}

func hasToolUse(blocks []ContentBlock) bool {
	for _, b := range blocks {
		if b.Type == "tool_use" {
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
		return "stop_sequence"
	default:
		return fr.Other
	}
}

// ResponseFromUniversal serializes a universal response into the Anthropic
// Messages response shape.
func ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	ar := Response{Model: resp.Model, Role: "assistant", StopReason: finishReasonToStopReason(resp.FinishReason)}

	for _, m := range resp.Messages {
		if m.Kind != universal.MessageAssistant {
			continue
		}

		ar.Content = append(ar.Content, assistantContentToBlocks(m.Assistant)...)
	}

	if resp.Usage != nil {
		if resp.Usage.InputTokens != nil {
			ar.Usage.InputTokens = *resp.Usage.InputTokens
		}

		if resp.Usage.OutputTokens != nil {
			ar.Usage.OutputTokens = *resp.Usage.OutputTokens
		}

		if resp.Usage.CacheCreationInputTokens != nil {
			ar.Usage.CacheCreationInputTokens = *resp.Usage.CacheCreationInputTokens
		}

		if resp.Usage.CacheReadInputTokens != nil {
			ar.Usage.CacheReadInputTokens = *resp.Usage.CacheReadInputTokens
		}
	}

	return json.Marshal(ar)
}
