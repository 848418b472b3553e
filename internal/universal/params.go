package universal

// ToolChoice selects how the model may invoke tools.
type ToolChoice struct {
	// Mode is one of "auto", "none", "required", or "named".
	Mode string
	// Name is set when Mode == "named".
	Name string
	// DisableParallel mirrors OpenAI's parallel_tool_calls=false; set when
	// a request must suppress parallel tool invocation even for targets
	// (e.g. Anthropic) that express this differently.
	DisableParallel bool
}

// StructuredResponseFormat requests either free text or a JSON-schema
// constrained response.
type StructuredResponseFormat struct {
	// Kind is "text" or "json_schema".
	Kind   string
	Name   string
	Schema map[string]any
	Strict bool
}

// ReasoningConfig carries either an effort level or an explicit token
// budget for chain-of-thought generation, or both.
type ReasoningConfig struct {
	Effort      string // "low" | "medium" | "high" | ""
	BudgetTokens int
	HasBudget   bool
}

// UniversalTool is a single callable tool definition.
type UniversalTool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// UniversalParams carries the canonical sampling/control knobs plus a
// format-keyed extras side channel for fields no canonical field models.
type UniversalParams struct {
	Temperature *float64
	TopP        *float64
	TopK        *int
	MaxTokens   *int
	Stop        []string
	Seed        *int64

	PresencePenalty  *float64
	FrequencyPenalty *float64

	Stream bool

	Tools      []UniversalTool
	ToolChoice *ToolChoice

	ResponseFormat *StructuredResponseFormat
	Reasoning      *ReasoningConfig

	ParallelToolCalls *bool
	Metadata          map[string]any

	Store         *bool
	ServiceTier   string
	Logprobs      *bool
	TopLogprobs   *int

	// Extras preserves fields unknown to the canonical model, keyed by the
	// format that originated them. Re-serializing to that same format
	// restores them; re-serializing to a different format drops them.
	Extras map[ProviderFormat]map[string]any
}

func NewUniversalParams() UniversalParams {
	return UniversalParams{Extras: make(map[ProviderFormat]map[string]any)}
}

// ExtrasFor returns the extras map for the given format, creating it if
// absent, so callers can fill it without a nil check.
func (p *UniversalParams) ExtrasFor(format ProviderFormat) map[string]any {
	if p.Extras == nil {
		p.Extras = make(map[ProviderFormat]map[string]any)
	}

	m, ok := p.Extras[format]
	if !ok {
		m = make(map[string]any)
		p.Extras[format] = m
	}

	return m
}

// UniversalRequest is the canonical pivot for any inbound chat/completion
// request.
type UniversalRequest struct {
	Model    string
	Messages []Message
	Params   UniversalParams
}

// FinishReason is the canonical completion-status enum. Other carries a
// provider's native string verbatim when it does not map to one of the
// closed cases.
type FinishReason struct {
	Kind  FinishReasonKind
	Other string
}

type FinishReasonKind int

const (
	FinishStop FinishReasonKind = iota
	FinishLength
	FinishToolCalls
	FinishContentFilter
	FinishOther
)

func (f FinishReason) String() string {
	switch f.Kind {
	case FinishStop:
		return "stop"
	case FinishLength:
		return "length"
	case FinishToolCalls:
		return "tool_calls"
	case FinishContentFilter:
		return "content_filter"
	default:
		return f.Other
	}
}

// UniversalUsage carries token accounting. Fields are pointers so that
// "not reported by this provider" is distinguishable from "zero".
type UniversalUsage struct {
	InputTokens              *int
	OutputTokens             *int
	TotalTokens              *int
	ReasoningTokens          *int
	CacheCreationInputTokens *int
	CacheReadInputTokens     *int
}

// UniversalResponse is the canonical pivot for any outbound chat/completion
// response.
type UniversalResponse struct {
	Model        string
	Messages     []Message
	Usage        *UniversalUsage
	FinishReason *FinishReason
}
