package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/davincible/llm-router-go/internal/convert"
	"github.com/davincible/llm-router-go/internal/universal"
)

const dataPDFPrefix = "data:application/pdf;base64,"

// RequestToUniversal converts a typed ChatRequest into the universal pivot.
func RequestToUniversal(req ChatRequest) (universal.UniversalRequest, error) {
	messages, err := convert.Slice(req.Messages, func(m ChatMessage) (universal.Message, error) {
		um, err := messageToUniversal(m)
		if err != nil {
			return universal.Message{}, fmt.Errorf("convert message (role=%s): %w", m.Role, err)
		}

		return um, nil
	})
	if err != nil {
		return universal.UniversalRequest{}, err
	}

	params := universal.NewUniversalParams()
	params.Temperature = req.Temperature
	params.TopP = req.TopP
	params.Seed = req.Seed
	params.PresencePenalty = req.PresencePenalty
	params.FrequencyPenalty = req.FrequencyPenalty
	params.Stream = req.Stream
	params.ParallelToolCalls = req.ParallelToolCalls
	params.ServiceTier = req.ServiceTier
	params.Store = req.Store
	params.Metadata = req.Metadata
	params.Logprobs = req.Logprobs
	params.TopLogprobs = req.TopLogprobs

	if req.MaxCompletionTokens != nil {
		params.MaxTokens = req.MaxCompletionTokens
	} else {
		params.MaxTokens = req.MaxTokens
	}

	if req.Stop != nil {
		params.Stop = stopToSlice(req.Stop)
	}

	if req.ReasoningEffort != "" {
		params.Reasoning = &universal.ReasoningConfig{Effort: req.ReasoningEffort}
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, universal.UniversalTool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}

	if req.ToolChoice != nil {
		params.ToolChoice = toolChoiceToUniversal(req.ToolChoice)
	}

	if params.ToolChoice == nil && req.ParallelToolCalls != nil && !*req.ParallelToolCalls {
		params.ToolChoice = &universal.ToolChoice{Mode: "auto", DisableParallel: true}
	} else if params.ToolChoice != nil && req.ParallelToolCalls != nil && !*req.ParallelToolCalls {
		params.ToolChoice.DisableParallel = true
	}

	if req.ResponseFormat != nil {
		params.ResponseFormat = responseFormatToUniversal(req.ResponseFormat)
	}

	if req.LogitBias != nil {
		extras := params.ExtrasFor(universal.FormatOpenAIChat)
		extras["logit_bias"] = req.LogitBias
	}

	if req.N != nil {
		params.ExtrasFor(universal.FormatOpenAIChat)["n"] = *req.N
	}

	if req.StreamOptions != nil {
		params.ExtrasFor(universal.FormatOpenAIChat)["stream_options"] = req.StreamOptions
	}

	return universal.UniversalRequest{Model: req.Model, Messages: messages, Params: params}, nil
}

func stopToSlice(stop any) []string {
	switch v := stop.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}

		return out
	default:
		return nil
	}
}

func toolChoiceToUniversal(raw any) *universal.ToolChoice {
	switch v := raw.(type) {
	case string:
		return &universal.ToolChoice{Mode: v}
	case map[string]any:
		if fn, ok := v["function"].(map[string]any); ok {
			if name, ok := fn["name"].(string); ok {
				return &universal.ToolChoice{Mode: "named", Name: name}
			}
		}
	}

	return nil
}

func responseFormatToUniversal(rf map[string]any) *universal.StructuredResponseFormat {
	kind, _ := rf["type"].(string)
	if kind != "json_schema" {
		return &universal.StructuredResponseFormat{Kind: "text"}
	}

	schemaWrapper, _ := rf["json_schema"].(map[string]any)
	name, _ := schemaWrapper["name"].(string)
	schema, _ := schemaWrapper["schema"].(map[string]any)
	strict, _ := schemaWrapper["strict"].(bool)

	return &universal.StructuredResponseFormat{Kind: "json_schema", Name: name, Schema: schema, Strict: strict}
}

func messageToUniversal(m ChatMessage) (universal.Message, error) {
	switch m.Role {
	case "system":
		return universal.NewSystemMessage(contentToUserContent(m.Content)), nil
	case "developer":
		return universal.NewDeveloperMessage(contentToUserContent(m.Content)), nil
	case "user":
		return universal.NewUserMessage(contentToUserContent(m.Content)), nil
	case "assistant":
		return assistantMessageToUniversal(m)
	case "tool", "function":
		return toolMessageToUniversal(m)
	default:
		return universal.Message{}, fmt.Errorf("unknown role %q", m.Role)
	}
}

func contentToUserContent(content any) universal.UserContent {
	switch v := content.(type) {
	case string:
		return universal.PlainUserContent(v)
	case nil:
		return universal.PlainUserContent("")
	case []any:
		parts := make([]universal.UserContentPart, 0, len(v))

		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}

			var part ChatContentPart
			if err := json.Unmarshal(b, &part); err != nil {
				continue
			}

			parts = append(parts, contentPartToUniversal(part))
		}

		return universal.PartsUserContent(parts)
	default:
		return universal.PlainUserContent(fmt.Sprintf("%v", v))
	}
}

func contentPartToUniversal(part ChatContentPart) universal.UserContentPart {
	switch part.Type {
	case "text":
		return universal.UserContentPart{Kind: universal.UserPartText, Text: part.Text}
	case "image_url":
		if part.ImageURL != nil && strings.HasPrefix(part.ImageURL.URL, dataPDFPrefix) {
			return universal.UserContentPart{
				Kind:         universal.UserPartFile,
				FileData:     strings.TrimPrefix(part.ImageURL.URL, dataPDFPrefix),
				FileMimeType: "application/pdf",
				Filename:     "file_from_base64.pdf",
			}
		}

		url := ""
		data := ""
		media := ""

		if part.ImageURL != nil {
			if strings.HasPrefix(part.ImageURL.URL, "data:") {
				media, data = splitDataURL(part.ImageURL.URL)
			} else {
				url = part.ImageURL.URL
			}
		}

		return universal.UserContentPart{Kind: universal.UserPartImage, ImageURL: url, ImageData: data, MediaType: media}
	case "file":
		filename := ""
		fileData := ""

		if part.File != nil {
			filename = part.File.Filename
			fileData = part.File.FileData
		}

		return universal.UserContentPart{Kind: universal.UserPartFile, Filename: filename, FileData: fileData}
	default:
		return universal.UserContentPart{Kind: universal.UserPartText, Text: part.Text}
	}
}

func splitDataURL(url string) (mediaType, data string) {
	rest := strings.TrimPrefix(url, "data:")
	semi := strings.Index(rest, ";base64,")

	if semi < 0 {
		return "", rest
	}

	return rest[:semi], rest[semi+len(";base64,"):]
}

func assistantMessageToUniversal(m ChatMessage) (universal.Message, error) {
	var parts []universal.AssistantContentPart

	if text, ok := m.Content.(string); ok && text != "" {
		parts = append(parts, universal.AssistantContentPart{Kind: universal.AssistantPartText, Text: text})
	}

	for _, tc := range m.ToolCalls {
		args, err := parseToolArguments(tc.Function.Arguments)
		if err != nil {
			return universal.Message{}, err
		}

		parts = append(parts, universal.AssistantContentPart{
			Kind:       universal.AssistantPartToolCall,
			ToolCallID: tc.ID,
			ToolName:   tc.Function.Name,
			Arguments:  args,
		})
	}

	if m.FunctionCall != nil {
		args, _ := parseToolArguments(m.FunctionCall.Arguments)
		parts = append(parts, universal.AssistantContentPart{
			Kind:       universal.AssistantPartToolCall,
			ToolCallID: "call_" + uuid.NewString(),
			ToolName:   m.FunctionCall.Name,
			Arguments:  args,
		})
	}

	if len(parts) == 0 {
		return universal.NewAssistantMessage(universal.PlainAssistantContent(""), ""), nil
	}

	return universal.NewAssistantMessage(universal.PartsAssistantContent(parts), ""), nil
}

func parseToolArguments(raw string) (universal.ToolCallArguments, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return universal.InvalidArguments(raw), nil
	}

	return universal.ValidArguments(obj), nil
}

func toolMessageToUniversal(m ChatMessage) (universal.Message, error) {
	output := extractToolOutput(m.Content)
	toolCallID := m.ToolCallID

	if toolCallID == "" {
		toolCallID = m.Name
	}

	return universal.NewToolMessage([]universal.ToolContentPart{
		{ToolCallID: toolCallID, ToolName: m.Name, Output: output},
	}), nil
}

func extractToolOutput(content any) any {
	switch v := content.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return parsed
		}

		return v
	default:
		return v
	}
}

// RequestFromUniversal serializes a universal request into a ChatRequest
// and marshals it to JSON. It does not apply the model-family capability
// transforms (§4.2.7); ApplyCapabilityRules is called only by the Mistral
// converter, on the ChatRequest it decodes back from this function's output.
func RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	cr := ChatRequest{Model: req.Model}

	messages, err := convert.FlatSlice(req.Messages, messageFromUniversal)
	if err != nil {
		return nil, err
	}

	cr.Messages = messages

	p := req.Params
	cr.Temperature = p.Temperature
	cr.TopP = p.TopP
	cr.MaxTokens = p.MaxTokens
	cr.Seed = p.Seed
	cr.PresencePenalty = p.PresencePenalty
	cr.FrequencyPenalty = p.FrequencyPenalty
	cr.Stream = p.Stream
	cr.ParallelToolCalls = p.ParallelToolCalls
	cr.ServiceTier = p.ServiceTier
	cr.Store = p.Store
	cr.Metadata = p.Metadata
	cr.Logprobs = p.Logprobs
	cr.TopLogprobs = p.TopLogprobs

	if len(p.Stop) == 1 {
		cr.Stop = p.Stop[0]
	} else if len(p.Stop) > 1 {
		stops := make([]any, len(p.Stop))
		for i, s := range p.Stop {
			stops[i] = s
		}

		cr.Stop = stops
	}

	if p.Reasoning != nil && p.Reasoning.Effort != "" {
		cr.ReasoningEffort = p.Reasoning.Effort
	}

	for _, t := range p.Tools {
		cr.Tools = append(cr.Tools, ChatTool{
			Type: "function",
			Function: ChatFunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	if p.ToolChoice != nil {
		switch p.ToolChoice.Mode {
		case "named":
			cr.ToolChoice = map[string]any{"type": "function", "function": map[string]any{"name": p.ToolChoice.Name}}
		default:
			cr.ToolChoice = p.ToolChoice.Mode
		}
	}

	if p.ResponseFormat != nil {
		if p.ResponseFormat.Kind == "json_schema" {
			cr.ResponseFormat = map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   p.ResponseFormat.Name,
					"schema": p.ResponseFormat.Schema,
					"strict": p.ResponseFormat.Strict,
				},
			}
		}
	}

	if extras, ok := p.Extras[universal.FormatOpenAIChat]; ok {
		if lb, ok := extras["logit_bias"].(map[string]int); ok {
			cr.LogitBias = lb
		}

		if n, ok := extras["n"].(int); ok {
			cr.N = &n
		}

		if so, ok := extras["stream_options"].(map[string]any); ok {
			cr.StreamOptions = so
		}
	}

	return json.Marshal(cr)
}

func messageFromUniversal(m universal.Message) ([]ChatMessage, error) {
	switch m.Kind {
	case universal.MessageSystem:
		return []ChatMessage{{Role: "system", Content: contentFromUserContent(m.Content)}}, nil
	case universal.MessageDeveloper:
		return []ChatMessage{{Role: "developer", Content: contentFromUserContent(m.Content)}}, nil
	case universal.MessageUser:
		return []ChatMessage{{Role: "user", Content: contentFromUserContent(m.Content)}}, nil
	case universal.MessageAssistant:
		return []ChatMessage{assistantMessageFromUniversal(m)}, nil
	case universal.MessageTool:
		out := make([]ChatMessage, 0, len(m.ToolParts))

		for _, tp := range m.ToolParts {
			out = append(out, ChatMessage{Role: "tool", ToolCallID: tp.ToolCallID, Content: toolOutputToString(tp.Output)})
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unknown message kind %v", m.Kind)
	}
}

func toolOutputToString(output any) string {
	if s, ok := output.(string); ok {
		return s
	}

	b, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf("%v", output)
	}

	return string(b)
}

func contentFromUserContent(c universal.UserContent) any {
	if c.IsPlain() {
		return c.Text
	}

	parts := make([]ChatContentPart, 0, len(c.Parts))

	for _, p := range c.Parts {
		parts = append(parts, contentPartFromUniversal(p))
	}

	return parts
}

func contentPartFromUniversal(p universal.UserContentPart) ChatContentPart {
	switch p.Kind {
	case universal.UserPartText:
		return ChatContentPart{Type: "text", Text: p.Text}
	case universal.UserPartImage:
		url := p.ImageURL
		if url == "" && p.ImageData != "" {
			url = "data:" + p.MediaType + ";base64," + p.ImageData
		}

		return ChatContentPart{Type: "image_url", ImageURL: &ChatImageURL{URL: url}}
	case universal.UserPartFile:
		if p.FileMimeType == "application/pdf" {
			return ChatContentPart{Type: "image_url", ImageURL: &ChatImageURL{URL: dataPDFPrefix + p.FileData}}
		}

		return ChatContentPart{Type: "file", File: &ChatFilePart{FileData: p.FileData, Filename: p.Filename}}
	default:
		return ChatContentPart{Type: "text", Text: p.Text}
	}
}

func assistantMessageFromUniversal(m universal.Message) ChatMessage {
	cm := ChatMessage{Role: "assistant"}

	if m.Assistant.IsPlain() {
		cm.Content = m.Assistant.Text
		return cm
	}

	var texts []string

	for _, p := range m.Assistant.Parts {
		switch p.Kind {
		case universal.AssistantPartText:
			texts = append(texts, p.Text)
		case universal.AssistantPartToolCall:
			argsStr := "{}"

			if obj, ok := p.Arguments.Object(); ok {
				if b, err := json.Marshal(obj); err == nil {
					argsStr = string(b)
				}
			} else if raw, ok := p.Arguments.Raw(); ok {
				argsStr = raw
			}

			cm.ToolCalls = append(cm.ToolCalls, ChatToolCall{
				ID:   p.ToolCallID,
				Type: "function",
				Function: ChatFunctionCall{
					Name:      p.ToolName,
					Arguments: argsStr,
				},
			})
		}
		// Reasoning parts have no Chat Completions representation and are
		// intentionally dropped at this boundary (no such field exists).
	}

	if len(texts) > 0 {
		cm.Content = strings.Join(texts, "")
	}

	return cm
}
