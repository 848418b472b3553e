package mistral

import (
	"encoding/json"
	"fmt"

	"github.com/davincible/llm-router-go/internal/providers/openai"
	"github.com/davincible/llm-router-go/internal/universal"
)

// RequestToUniversal converts a typed Mistral request into the universal
// pivot, delegating the OpenAI-compatible portion to the openai package and
// mapping random_seed onto the canonical Seed field.
func RequestToUniversal(req Request) (universal.UniversalRequest, error) {
	ur, err := openai.RequestToUniversal(req.ChatRequest)
	if err != nil {
		return universal.UniversalRequest{}, fmt.Errorf("convert mistral request: %w", err)
	}

	if req.RandomSeed != nil {
		ur.Params.Seed = req.RandomSeed
	}

	if req.SafePrompt != nil {
		ur.Params.ExtrasFor(universal.FormatMistral)["safe_prompt"] = *req.SafePrompt
	}

	return ur, nil
}

// RequestFromUniversal serializes the universal pivot into a Mistral chat
// completions request body: build the OpenAI-compatible portion, apply the
// Mistral-specific capability stripping (§4.2.7), then restore the
// Mistral-exclusive fields from Seed/extras.
func RequestFromUniversal(req universal.UniversalRequest) ([]byte, error) {
	base, err := openai.RequestFromUniversal(req)
	if err != nil {
		return nil, err
	}

	var mreq Request
	if err := json.Unmarshal(base, &mreq); err != nil {
		return nil, fmt.Errorf("unmarshal intermediate chat completions body: %w", err)
	}

	if err := openai.ApplyCapabilityRules(&mreq.ChatRequest, false, true, false, false); err != nil {
		return nil, err
	}

	if req.Params.Seed != nil {
		mreq.RandomSeed = req.Params.Seed
		mreq.ChatRequest.Seed = nil
	}

	if extras, ok := req.Params.Extras[universal.FormatMistral]; ok {
		if sp, ok := extras["safe_prompt"].(bool); ok {
			mreq.SafePrompt = &sp
		}
	}

	return json.Marshal(mreq)
}

// ResponseToUniversal delegates to the OpenAI response converter since
// Mistral's response shape is identical.
func ResponseToUniversal(resp Response) (universal.UniversalResponse, error) {
	return openai.ResponseToUniversal(resp)
}

func ResponseFromUniversal(resp universal.UniversalResponse) ([]byte, error) {
	return openai.ResponseFromUniversal(resp)
}
