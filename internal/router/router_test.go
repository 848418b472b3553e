package router

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davincible/llm-router-go/internal/auth"
	"github.com/davincible/llm-router-go/internal/catalog"
	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/universal"
)

type fakeClient struct {
	id      string
	formats []universal.ProviderFormat
}

func (f *fakeClient) ID() string                             { return f.id }
func (f *fakeClient) Formats() []universal.ProviderFormat    { return f.formats }

func (f *fakeClient) Complete(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) ([]byte, error) {
	return []byte("{}"), nil
}

func (f *fakeClient) CompleteStream(ctx context.Context, payload []byte, a auth.Config, spec catalog.ModelSpec, format universal.ProviderFormat, headers http.Header) (io.ReadCloser, error) {
	return nil, nil
}

func dummyAuth() auth.Config {
	return auth.APIKey("test", "", "")
}

func googleSpec(model string) catalog.ModelSpec {
	return catalog.ModelSpec{Model: model, Format: universal.FormatGoogle, SupportsStreaming: true}
}

func openAISpec(model string) catalog.ModelSpec {
	return catalog.ModelSpec{Model: model, Format: universal.FormatOpenAIChat, SupportsStreaming: true}
}

func TestVertexModelRoutesToVertexProvider(t *testing.T) {
	vertexModel := "publishers/google/models/gemini-2.5-flash-preview-04-17"
	googleModel := "gemini-2.5-flash"

	c := catalog.New(map[string]catalog.ModelSpec{
		vertexModel: googleSpec(vertexModel),
		googleModel: googleSpec(googleModel),
	}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("google", &fakeClient{id: "google", formats: []universal.ProviderFormat{universal.FormatGoogle}}).
		AddProvider("vertex", &fakeClient{id: "vertex", formats: []universal.ProviderFormat{universal.FormatGoogle}}).
		AddAuth("google", dummyAuth()).
		AddAuth("vertex", dummyAuth()).
		Build()
	require.NoError(t, err)

	alias, err := r.ProviderAlias(vertexModel)
	require.NoError(t, err)
	assert.Equal(t, "vertex", alias)

	alias, err = r.ProviderAlias(googleModel)
	require.NoError(t, err)
	assert.Equal(t, "google", alias)
}

func TestVertexModelFallsBackToGoogleWhenNoVertexProvider(t *testing.T) {
	vertexModel := "publishers/google/models/gemini-pro"

	c := catalog.New(map[string]catalog.ModelSpec{
		vertexModel: googleSpec(vertexModel),
	}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("google", &fakeClient{id: "google", formats: []universal.ProviderFormat{universal.FormatGoogle}}).
		AddAuth("google", dummyAuth()).
		Build()
	require.NoError(t, err)

	alias, err := r.ProviderAlias(vertexModel)
	require.NoError(t, err)
	assert.Equal(t, "google", alias)
}

func TestResponsesRequiredModelForcesResponsesFormat(t *testing.T) {
	model := "gpt-5-pro"

	c := catalog.New(map[string]catalog.ModelSpec{model: openAISpec(model)}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("openai", &fakeClient{id: "openai", formats: []universal.ProviderFormat{universal.FormatOpenAIChat, universal.FormatResponses}}).
		AddAuth("openai", dummyAuth()).
		Build()
	require.NoError(t, err)

	rt, err := r.resolveProvider(model, universal.FormatOpenAIChat)
	require.NoError(t, err)
	assert.Equal(t, universal.FormatResponses, rt.format)
}

func TestCodexVariantForcesResponsesFormat(t *testing.T) {
	model := "gpt-5.1-codex"

	c := catalog.New(map[string]catalog.ModelSpec{model: openAISpec(model)}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("openai", &fakeClient{id: "openai", formats: []universal.ProviderFormat{universal.FormatOpenAIChat, universal.FormatResponses}}).
		AddAuth("openai", dummyAuth()).
		Build()
	require.NoError(t, err)

	rt, err := r.resolveProvider(model, universal.FormatOpenAIChat)
	require.NoError(t, err)
	assert.Equal(t, universal.FormatResponses, rt.format)
}

func TestNonResponsesModelKeepsChatCompletionsFormat(t *testing.T) {
	model := "gpt-5-mini"

	c := catalog.New(map[string]catalog.ModelSpec{model: openAISpec(model)}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("openai", &fakeClient{id: "openai", formats: []universal.ProviderFormat{universal.FormatOpenAIChat, universal.FormatResponses}}).
		AddAuth("openai", dummyAuth()).
		Build()
	require.NoError(t, err)

	rt, err := r.resolveProvider(model, universal.FormatOpenAIChat)
	require.NoError(t, err)
	assert.Equal(t, universal.FormatOpenAIChat, rt.format)
}

func TestResponsesRequiredModelWithoutResponsesSupportStaysChatCompletions(t *testing.T) {
	model := "gpt-5-pro"

	c := catalog.New(map[string]catalog.ModelSpec{model: openAISpec(model)}, nil)

	r, err := NewBuilder(c, providers.NewRegistry()).
		AddProvider("openai", &fakeClient{id: "openai", formats: []universal.ProviderFormat{universal.FormatOpenAIChat}}).
		AddAuth("openai", dummyAuth()).
		Build()
	require.NoError(t, err)

	rt, err := r.resolveProvider(model, universal.FormatOpenAIChat)
	require.NoError(t, err)
	assert.Equal(t, universal.FormatOpenAIChat, rt.format)
}

func TestOverrideModelSkipsGoogleAndBedrock(t *testing.T) {
	out, err := overrideModel([]byte(`{"contents":[]}`), universal.FormatGoogle, "gemini-2.5-flash")
	require.NoError(t, err)
	assert.Equal(t, `{"contents":[]}`, string(out))
}

func TestOverrideModelPatchesOpenAI(t *testing.T) {
	out, err := overrideModel([]byte(`{"model":"gpt-4","messages":[]}`), universal.FormatOpenAIChat, "gpt-4-turbo")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"gpt-4-turbo"`)
}
