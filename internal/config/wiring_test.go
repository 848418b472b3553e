package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davincible/llm-router-go/internal/auth"
	"github.com/davincible/llm-router-go/internal/universal"
)

func TestNewAdapterRegistry_RegistersAllFormats(t *testing.T) {
	registry := NewAdapterRegistry()

	for _, format := range []universal.ProviderFormat{
		universal.FormatOpenAIChat,
		universal.FormatResponses,
		universal.FormatAnthropic,
		universal.FormatGoogle,
		universal.FormatBedrock,
		universal.FormatMistral,
	} {
		adapter, ok := registry.Get(format)
		require.True(t, ok, "expected adapter registered for format %s", format)
		assert.Equal(t, format, adapter.Format())
	}
}

func TestResolveAuth(t *testing.T) {
	apiKeyProvider := Provider{
		APIKey: "sk-test",
		Auth:   AuthSettings{Kind: "api_key"},
	}
	cfg := resolveAuth(apiKeyProvider)
	assert.Equal(t, auth.KindAPIKey, cfg.Kind)
	assert.Equal(t, "sk-test", cfg.Key)

	awsProvider := Provider{
		Auth: AuthSettings{
			Kind:      "aws",
			AccessKey: "AKIA...",
			SecretKey: "secret",
			Region:    "us-east-1",
			Service:   "bedrock",
		},
	}
	cfg = resolveAuth(awsProvider)
	assert.Equal(t, auth.KindAWSCredentials, cfg.Kind)
	assert.Equal(t, "us-east-1", cfg.Region)

	noneProvider := Provider{Auth: AuthSettings{Kind: "none"}}
	cfg = resolveAuth(noneProvider)
	assert.Equal(t, auth.KindNone, cfg.Kind)
}

func TestNewProviderClient(t *testing.T) {
	testCases := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"openai chat", "openai_chat", false},
		{"responses", "openai_responses", false},
		{"anthropic", "anthropic", false},
		{"google", "google", false},
		{"mistral", "mistral", false},
		{"bedrock", "bedrock_converse", false},
		{"unknown", "carrier-pigeon", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := newProviderClient(Provider{
				Name:    "test",
				APIBase: "https://example.com",
				Format:  tc.format,
			})

			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "test", client.ID())
		})
	}
}

func TestBuildRouter_UnknownFormatFails(t *testing.T) {
	cfg := &Config{
		Providers: []Provider{
			{Name: "bogus", APIBase: "https://example.com", Format: "not-a-format"},
		},
	}

	_, err := BuildRouter(cfg, NewAdapterRegistry())
	assert.Error(t, err)
}

func TestBuildRouter_MissingCatalogFileIsNotFatal(t *testing.T) {
	cfg := &Config{
		CatalogPath: "/nonexistent/catalog.yaml",
		Providers: []Provider{
			{Name: "openrouter", APIBase: "https://openrouter.ai/api/v1", Format: "openai_chat", APIKey: "key"},
		},
	}

	r, err := BuildRouter(cfg, NewAdapterRegistry())
	require.NoError(t, err)
	assert.NotNil(t, r)
}
