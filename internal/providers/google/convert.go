package google

import (
	"fmt"

	"github.com/davincible/llm-router-go/internal/convert"
	"github.com/davincible/llm-router-go/internal/universal"
)

// RequestToUniversal converts a typed Gemini Request into the universal
// pivot (§4.2.5).
func RequestToUniversal(model string, req Request) (universal.UniversalRequest, error) {
	var messages []universal.Message

	if req.SystemInstruction != nil {
		text := contentText(*req.SystemInstruction)
		if text != "" {
			messages = append(messages, universal.NewSystemMessage(universal.PlainUserContent(text)))
		}
	}

	converted, err := convert.FlatSlice(req.Contents, func(c Content) ([]universal.Message, error) {
		ms, err := contentToMessages(c)
		if err != nil {
			return nil, fmt.Errorf("convert content (role=%s): %w", c.Role, err)
		}

		return ms, nil
	})
	if err != nil {
		return universal.UniversalRequest{}, err
	}

	messages = append(messages, converted...)

	params := universal.NewUniversalParams()

	if gc := req.GenerationConfig; gc != nil {
		params.Temperature = gc.Temperature
		params.TopP = gc.TopP
		params.TopK = gc.TopK
		params.MaxTokens = gc.MaxOutputTokens
		params.Stop = gc.StopSequences

		if gc.ResponseMimeType == "application/json" {
			params.ResponseFormat = &universal.StructuredResponseFormat{Kind: "json_schema", Schema: gc.ResponseSchema}
		}

		if tc := gc.ThinkingConfig; tc != nil {
			rc := &universal.ReasoningConfig{}

			if tc.ThinkingLevel != "" {
				rc.Effort = thinkingLevelToEffort(tc.ThinkingLevel)
			} else if tc.ThinkingBudget != nil {
				rc.BudgetTokens = *tc.ThinkingBudget
				rc.HasBudget = true
			}

			params.Reasoning = rc
		}
	}

	for _, t := range req.Tools {
		for _, fd := range t.FunctionDeclarations {
			params.Tools = append(params.Tools, universal.UniversalTool{Name: fd.Name, Description: fd.Description, Parameters: fd.Parameters})
		}
	}

	if req.ToolConfig != nil && req.ToolConfig.FunctionCallingConfig != nil {
		params.ToolChoice = toolChoiceToUniversal(*req.ToolConfig.FunctionCallingConfig)
	}

	if len(req.SafetySettings) > 0 {
		extras := params.ExtrasFor(universal.FormatGoogle)

		safety := make([]map[string]any, 0, len(req.SafetySettings))
		for _, s := range req.SafetySettings {
			safety = append(safety, map[string]any{"category": s.Category, "threshold": s.Threshold})
		}

		extras["safetySettings"] = safety
	}

	return universal.UniversalRequest{Model: model, Messages: messages, Params: params}, nil
}

func toolChoiceToUniversal(fc FunctionCallingConfig) *universal.ToolChoice {
	switch fc.Mode {
	case "ANY":
		if len(fc.AllowedFunctionNames) == 1 {
			return &universal.ToolChoice{Mode: "named", Name: fc.AllowedFunctionNames[0]}
		}

		return &universal.ToolChoice{Mode: "required"}
	case "NONE":
		return &universal.ToolChoice{Mode: "none"}
	default:
		return &universal.ToolChoice{Mode: "auto"}
	}
}

func contentText(c Content) string {
	text := ""
	for _, p := range c.Parts {
		text += p.Text
	}

	return text
}

func contentToMessages(c Content) ([]universal.Message, error) {
	var toolResults []universal.ToolContentPart

	var userParts []universal.UserContentPart

	var assistantParts []universal.AssistantContentPart

	isModel := c.Role == "model"

	for _, p := range c.Parts {
		switch {
		case p.FunctionResponse != nil:
			toolResults = append(toolResults, universal.ToolContentPart{
				ToolName: p.FunctionResponse.Name,
				Output:   p.FunctionResponse.Response,
			})
		case p.FunctionCall != nil:
			assistantParts = append(assistantParts, universal.AssistantContentPart{
				Kind:      universal.AssistantPartToolCall,
				ToolName:  p.FunctionCall.Name,
				Arguments: universal.ValidArguments(p.FunctionCall.Args),
			})
		case p.Thought:
			var sig *string
			if p.ThoughtSignature != "" {
				sig = &p.ThoughtSignature
			}

			assistantParts = append(assistantParts, universal.AssistantContentPart{Kind: universal.AssistantPartReasoning, Text: p.Text, EncryptedContent: sig})
		case p.InlineData != nil:
			userParts = append(userParts, universal.UserContentPart{Kind: universal.UserPartImage, ImageData: p.InlineData.Data, MediaType: p.InlineData.MimeType})
		case p.FileData != nil:
			userParts = append(userParts, universal.UserContentPart{Kind: universal.UserPartFile, FileURL: p.FileData.FileURI, FileMimeType: p.FileData.MimeType})
		default:
			if isModel {
				assistantParts = append(assistantParts, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: p.Text})
			} else {
				userParts = append(userParts, universal.UserContentPart{Kind: universal.UserPartText, Text: p.Text})
			}
		}
	}

	var out []universal.Message

	if len(toolResults) > 0 {
		out = append(out, universal.NewToolMessage(toolResults))
	}

	if isModel {
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

// RequestFromUniversal serializes the universal pivot into a Gemini
// generateContent request body (the model itself is carried in the URL
// path, not the body, per §6.2).
func RequestFromUniversal(req universal.UniversalRequest) (Request, error) {
	var gr Request

	var pendingToolResults []universal.ToolContentPart

	for _, m := range req.Messages {
		switch m.Kind {
		case universal.MessageSystem, universal.MessageDeveloper:
			text := m.Content.Text
			if gr.SystemInstruction == nil {
				gr.SystemInstruction = &Content{Parts: []Part{{Text: text}}}
			} else {
				gr.SystemInstruction.Parts[0].Text += text
			}
		case universal.MessageTool:
			pendingToolResults = append(pendingToolResults, m.ToolParts...)
		case universal.MessageUser:
			parts := userContentToParts(m.Content)

			if len(pendingToolResults) > 0 {
				for _, tr := range pendingToolResults {
					parts = append([]Part{toolResultPart(tr)}, parts...)
				}

				pendingToolResults = nil
			}

			gr.Contents = append(gr.Contents, Content{Role: "user", Parts: parts})
		case universal.MessageAssistant:
			if len(pendingToolResults) > 0 {
				var parts []Part
				for _, tr := range pendingToolResults {
					parts = append(parts, toolResultPart(tr))
				}

				gr.Contents = append(gr.Contents, Content{Role: "user", Parts: parts})
				pendingToolResults = nil
			}

			gr.Contents = append(gr.Contents, Content{Role: "model", Parts: assistantContentToParts(m.Assistant)})
		}
	}

	if len(pendingToolResults) > 0 {
		var parts []Part
		for _, tr := range pendingToolResults {
			parts = append(parts, toolResultPart(tr))
		}

		gr.Contents = append(gr.Contents, Content{Role: "user", Parts: parts})
	}

	gc := &GenerationConfig{
		Temperature:     req.Params.Temperature,
		TopP:            req.Params.TopP,
		TopK:            req.Params.TopK,
		MaxOutputTokens: req.Params.MaxTokens,
		StopSequences:   req.Params.Stop,
	}

	if rf := req.Params.ResponseFormat; rf != nil && rf.Kind == "json_schema" {
		gc.ResponseMimeType = "application/json"
		gc.ResponseSchema = rf.Schema
	}

	if rc := req.Params.Reasoning; rc != nil {
		tc := &ThinkingConfig{IncludeThoughts: true}

		if usesThinkingLevel(req.Model) {
			tc.ThinkingLevel = effortToThinkingLevel(rc.Effort)
		} else if rc.HasBudget {
			budget := rc.BudgetTokens
			tc.ThinkingBudget = &budget
		} else {
			budget := effortToThinkingBudget(rc.Effort)
			tc.ThinkingBudget = &budget
		}

		gc.ThinkingConfig = tc
	}

	gr.GenerationConfig = gc

	for _, t := range req.Params.Tools {
		gr.Tools = append(gr.Tools, Tool{FunctionDeclarations: []FunctionDeclaration{{Name: t.Name, Description: t.Description, Parameters: t.Parameters}}})
	}

	if req.Params.ToolChoice != nil {
		gr.ToolConfig = &ToolConfig{FunctionCallingConfig: toolChoiceFromUniversal(req.Params.ToolChoice)}
	}

	if extras, ok := req.Params.Extras[universal.FormatGoogle]; ok {
		if raw, ok := extras["safetySettings"].([]map[string]any); ok {
			for _, s := range raw {
				gr.SafetySettings = append(gr.SafetySettings, SafetySetting{Category: fmt.Sprint(s["category"]), Threshold: fmt.Sprint(s["threshold"])})
			}
		}
	}

	return gr, nil
}

func toolChoiceFromUniversal(tc *universal.ToolChoice) *FunctionCallingConfig {
	switch tc.Mode {
	case "required":
		return &FunctionCallingConfig{Mode: "ANY"}
	case "named":
		return &FunctionCallingConfig{Mode: "ANY", AllowedFunctionNames: []string{tc.Name}}
	case "none":
		return &FunctionCallingConfig{Mode: "NONE"}
	default:
		return &FunctionCallingConfig{Mode: "AUTO"}
	}
}

func toolResultPart(tr universal.ToolContentPart) Part {
	resp, ok := tr.Output.(map[string]any)
	if !ok {
		resp = map[string]any{"result": tr.Output}
	}

	return Part{FunctionResponse: &FunctionResponse{Name: tr.ToolName, Response: resp}}
}

func userContentToParts(c universal.UserContent) []Part {
	if c.IsPlain() {
		return []Part{{Text: c.Text}}
	}

	out := make([]Part, 0, len(c.Parts))

	for _, p := range c.Parts {
		switch p.Kind {
		case universal.UserPartText:
			out = append(out, Part{Text: p.Text})
		case universal.UserPartImage:
			out = append(out, Part{InlineData: &Blob{Data: p.ImageData, MimeType: p.MediaType}})
		case universal.UserPartFile:
			out = append(out, Part{FileData: &FileData{FileURI: p.FileURL, MimeType: p.FileMimeType}})
		default:
			out = append(out, Part{Text: p.Text})
		}
	}

	return out
}

func assistantContentToParts(c universal.AssistantContent) []Part {
	if c.IsPlain() {
		if c.Text == "" {
			return nil
		}

		return []Part{{Text: c.Text}}
	}

	out := make([]Part, 0, len(c.Parts))

	for _, p := range c.Parts {
		switch p.Kind {
		case universal.AssistantPartText:
			out = append(out, Part{Text: p.Text})
		case universal.AssistantPartReasoning:
			sig := ""
			if p.EncryptedContent != nil {
				sig = *p.EncryptedContent
			}

			out = append(out, Part{Text: p.Text, Thought: true, ThoughtSignature: sig})
		case universal.AssistantPartToolCall:
			args, _ := p.Arguments.Object()
			out = append(out, Part{FunctionCall: &FunctionCall{Name: p.ToolName, Args: args}})
		}
	}

	return out
}

// ResponseToUniversal converts a typed Response into the universal pivot.
func ResponseToUniversal(resp Response) (universal.UniversalResponse, error) {
	if len(resp.Candidates) == 0 {
		return universal.UniversalResponse{Model: resp.ModelVersion}, nil
	}

	cand := resp.Candidates[0]

	var messages []universal.Message

	if cand.Content != nil {
		ms, err := contentToMessages(Content{Role: "model", Parts: cand.Content.Parts})
		if err != nil {
			return universal.UniversalResponse{}, err
		}

		messages = ms
	}

	ur := universal.UniversalResponse{Model: resp.ModelVersion, Messages: messages}
	ur.FinishReason = finishReasonToUniversal(cand.FinishReason)

	if hasFunctionCall(cand.Content) {
		ur.FinishReason = &universal.FinishReason{Kind: universal.FinishToolCalls}
	}

	if resp.UsageMetadata != nil {
		um := resp.UsageMetadata
		in, out, total, think := um.PromptTokenCount, um.CandidatesTokenCount, um.TotalTokenCount, um.ThoughtsTokenCount
		uu := &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

		if think > 0 {
			uu.ReasoningTokens = &think
		}

		if um.CachedContentTokenCount > 0 {
			c := um.CachedContentTokenCount
			uu.CacheReadInputTokens = &c
		}

		ur.Usage = uu
	}

	return ur, nil
}

func hasFunctionCall(c *Content) bool {
	if c == nil {
		return false
	}

	for _, p := range c.Parts {
		if p.FunctionCall != nil {
			return true
		}
	}

	return false
}

func finishReasonToUniversal(reason string) *universal.FinishReason {
	switch reason {
	case "STOP":
		return &universal.FinishReason{Kind: universal.FinishStop}
	case "MAX_TOKENS":
		return &universal.FinishReason{Kind: universal.FinishLength}
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return &universal.FinishReason{Kind: universal.FinishContentFilter}
	case "":
		return nil
	default:
		return &universal.FinishReason{Kind: universal.FinishOther, Other: reason}
	}
}

func finishReasonFromUniversal(fr *universal.FinishReason) string {
	if fr == nil {
		return "STOP"
	}

	switch fr.Kind {
	case universal.FinishStop, universal.FinishToolCalls:
		return "STOP"
	case universal.FinishLength:
		return "MAX_TOKENS"
	case universal.FinishContentFilter:
		return "SAFETY"
	default:
		return fr.Other
	}
}

// ResponseFromUniversal serializes a universal response into a Gemini
// generateContent response body.
func ResponseFromUniversal(resp universal.UniversalResponse) (Response, error) {
	gr := Response{ModelVersion: resp.Model}

	var parts []Part

	for _, m := range resp.Messages {
		if m.Kind != universal.MessageAssistant {
			continue
		}

		parts = append(parts, assistantContentToParts(m.Assistant)...)
	}

	gr.Candidates = []Candidate{{
		Content:      &Content{Role: "model", Parts: parts},
		FinishReason: finishReasonFromUniversal(resp.FinishReason),
	}}

	if resp.Usage != nil {
		um := &UsageMetadata{}

		if resp.Usage.InputTokens != nil {
			um.PromptTokenCount = *resp.Usage.InputTokens
		}

		if resp.Usage.OutputTokens != nil {
			um.CandidatesTokenCount = *resp.Usage.OutputTokens
		}

		if resp.Usage.TotalTokens != nil {
			um.TotalTokenCount = *resp.Usage.TotalTokens
		}

		if resp.Usage.ReasoningTokens != nil {
			um.ThoughtsTokenCount = *resp.Usage.ReasoningTokens
		}

		gr.UsageMetadata = um
	}

	return gr, nil
}
