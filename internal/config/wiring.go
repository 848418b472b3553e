package config

import (
	"fmt"
	"os"
	"time"

	"github.com/davincible/llm-router-go/internal/auth"
	"github.com/davincible/llm-router-go/internal/catalog"
	"github.com/davincible/llm-router-go/internal/providerhttp"
	"github.com/davincible/llm-router-go/internal/providers"
	"github.com/davincible/llm-router-go/internal/providers/anthropic"
	"github.com/davincible/llm-router-go/internal/providers/bedrock"
	"github.com/davincible/llm-router-go/internal/providers/google"
	"github.com/davincible/llm-router-go/internal/providers/mistral"
	"github.com/davincible/llm-router-go/internal/providers/openai"
	"github.com/davincible/llm-router-go/internal/retry"
	"github.com/davincible/llm-router-go/internal/router"
	"github.com/davincible/llm-router-go/internal/universal"
)

const defaultProviderTimeout = 120 * time.Second

// NewAdapterRegistry builds the universal format-adapter registry with
// every adapter package wired in, per spec §4.2.
func NewAdapterRegistry() *providers.Registry {
	r := providers.NewRegistry()
	r.Register(openai.NewChatAdapter())
	r.Register(openai.NewResponsesAdapter())
	r.Register(anthropic.NewAdapter())
	r.Register(google.NewAdapter())
	r.Register(bedrock.NewAdapter())
	r.Register(mistral.NewAdapter())

	return r
}

// BuildRouter constructs a router.Router from a loaded Config: the model
// catalog, every configured provider's HTTP client and auth config, and
// the retry policy, mirroring braintrust-llm-router's RouterBuilder (spec
// §3.5, §4.6).
func BuildRouter(cfg *Config, registry *providers.Registry) (*router.Router, error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load model catalog: %w", err)
	}

	builder := router.NewBuilder(cat, registry).WithRetryPolicy(retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond,
		Jitter:      cfg.Retry.Jitter,
	})

	for _, p := range cfg.Providers {
		client, err := newProviderClient(p)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.Name, err)
		}

		builder.AddProvider(p.Name, client)
		builder.AddAuth(p.Name, resolveAuth(p))
	}

	return builder.Build()
}

// loadCatalog reads the configured catalog file. A missing path isn't
// fatal at this layer — an empty catalog simply means every model lookup
// fails as an unknown model (an InvalidRequest error from the router).
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.New(nil, nil), nil
	}

	if _, err := os.Stat(path); err != nil {
		return catalog.New(nil, nil), nil
	}

	return catalog.Load(path)
}

func newProviderClient(p Provider) (router.ProviderClient, error) {
	timeout := defaultProviderTimeout
	if p.TimeoutSeconds > 0 {
		timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}

	switch universal.ProviderFormat(p.Format) {
	case universal.FormatOpenAIChat, universal.FormatResponses:
		return providerhttp.NewOpenAIClient(p.Name, p.APIBase, timeout), nil
	case universal.FormatAnthropic:
		return providerhttp.NewAnthropicClient(p.Name, p.APIBase, timeout), nil
	case universal.FormatGoogle:
		return providerhttp.NewGoogleClient(p.Name, p.APIBase, timeout), nil
	case universal.FormatMistral:
		return providerhttp.NewMistralClient(p.Name, p.APIBase, timeout), nil
	case universal.FormatBedrock:
		return providerhttp.NewBedrockClient(p.Name, p.APIBase, timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider format %q", p.Format)
	}
}

func resolveAuth(p Provider) auth.Config {
	switch p.Auth.Kind {
	case "aws":
		return auth.AWSCredentials(p.Auth.AccessKey, p.Auth.SecretKey, p.Auth.SessionToken, p.Auth.Region, p.Auth.Service)
	case "none":
		return auth.None()
	default:
		return auth.APIKey(p.APIKey, p.Auth.Header, p.Auth.Prefix)
	}
}
