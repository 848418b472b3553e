package openai

import (
	"encoding/json"

	"github.com/davincible/llm-router-go/internal/universal"
)

// ResponseToUniversal converts a typed ChatResponse into the universal
// pivot. finish_reason is recomputed per spec §4.2.3: any ToolCall forces
// ToolCalls regardless of the upstream status string.
func ResponseToUniversal(resp ChatResponse) (universal.UniversalResponse, error) {
	ur := universal.UniversalResponse{Model: resp.Model}

	for _, choice := range resp.Choices {
		um, err := assistantMessageToUniversal(choice.Message)
		if err != nil {
			return universal.UniversalResponse{}, err
		}

		ur.Messages = append(ur.Messages, um)

		reason := finishReasonToUniversal(choice.FinishReason)
		if hasToolCall(um) {
			reason = &universal.FinishReason{Kind: universal.FinishToolCalls}
		}

		ur.FinishReason = reason
	}

	if resp.Usage != nil {
		ur.Usage = usageToUniversal(*resp.Usage)
	}

	return ur, nil
}

func hasToolCall(m universal.Message) bool {
	if m.Kind != universal.MessageAssistant {
		return false
	}

	for _, p := range m.Assistant.Parts {
		if p.Kind == universal.AssistantPartToolCall {
			return true
		}
	}

	return false
}

func usageToUniversal(u ChatUsage) *universal.UniversalUsage {
	in, out, total := u.PromptTokens, u.CompletionTokens, u.TotalTokens
	uu := &universal.UniversalUsage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

	if u.CompletionTokensDetails != nil {
		rt := u.CompletionTokensDetails.ReasoningTokens
		uu.ReasoningTokens = &rt
	}

	if u.PromptTokensDetails != nil {
		ct := u.PromptTokensDetails.CachedTokens
		uu.CacheReadInputTokens = &ct
	}

	return uu
}

// finishReasonToUniversal maps the OpenAI native status string to the
// canonical enum (§4.2.3).
func finishReasonToUniversal(reason string) *universal.FinishReason {
	switch reason {
	case "stop":
		return &universal.FinishReason{Kind: universal.FinishStop}
	case "length":
		return &universal.FinishReason{Kind: universal.FinishLength}
	case "tool_calls", "function_call":
		return &universal.FinishReason{Kind: universal.FinishToolCalls}
	case "content_filter":
		return &universal.FinishReason{Kind: universal.FinishContentFilter}
	case "":
		return nil
	default:
		return &universal.FinishReason{Kind: universal.FinishOther, Other: reason}
	}
}

func finishReasonFromUniversal(fr *universal.FinishReason) string {
	if fr == nil {
		return ""
	}

	switch fr.Kind {
	case universal.FinishStop:
		return "stop"
	case universal.FinishLength:
		return "length"
	case universal.FinishToolCalls:
		return "tool_calls"
	case universal.FinishContentFilter:
		return "content_filter"
	default:
		return fr.Other
	}
}

// ResponseFromUniversal serializes a universal response back into the Chat
// Completions response shape.
func ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	cr := ChatResponse{Model: resp.Model}

	for i, m := range resp.Messages {
		cr.Choices = append(cr.Choices, ChatChoice{
			Index:        i,
			Message:      assistantMessageFromUniversal(m),
			FinishReason: finishReasonFromUniversal(resp.FinishReason),
		})
	}

	if resp.Usage != nil {
		u := ChatUsage{}

		if resp.Usage.InputTokens != nil {
			u.PromptTokens = *resp.Usage.InputTokens
		}

		if resp.Usage.OutputTokens != nil {
			u.CompletionTokens = *resp.Usage.OutputTokens
		}

		if resp.Usage.TotalTokens != nil {
			u.TotalTokens = *resp.Usage.TotalTokens
		}

		cr.Usage = &u
	}

	return json.Marshal(cr)
}
