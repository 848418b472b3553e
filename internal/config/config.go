package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort           = 6970
	DefaultConfigFilename  = "config.json"
	DefaultYAMLFilename    = "config.yaml"
	DefaultHost            = "127.0.0.1"
	DefaultCatalogFilename = "catalog.yaml"
)

var (
	// Default provider base URLs. internal/providerhttp's URL builders
	// append the per-format path suffix (spec §6.2), so these are bare
	// API-root bases, not the full endpoint the teacher's table used.
	DefaultProviderURLs = map[string]string{
		"openrouter": "https://openrouter.ai/api/v1",
		"openai":     "https://api.openai.com/v1",
		"anthropic":  "https://api.anthropic.com/v1",
		"nvidia":     "https://integrate.api.nvidia.com/v1",
		"gemini":     "https://generativelanguage.googleapis.com/v1beta",
		"mistral":    "https://api.mistral.ai/v1",
		"bedrock":    "https://bedrock-runtime.us-east-1.amazonaws.com",
	}

	// DefaultProviderFormats maps a well-known provider name to the
	// ProviderFormat internal/providerhttp client it builds, when a
	// Provider entry doesn't set Format explicitly. OpenAI-compatible
	// aggregators (openrouter, nvidia) default to "openai_chat".
	DefaultProviderFormats = map[string]string{
		"openrouter": "openai_chat",
		"openai":     "openai_chat",
		"anthropic":  "anthropic",
		"nvidia":     "openai_chat",
		"gemini":     "google",
		"mistral":    "mistral",
		"bedrock":    "bedrock_converse",
	}

	// Default models for each provider
	DefaultProviderModels = map[string][]string{
		"openrouter": {
			"anthropic/claude-3.5-sonnet",
			"anthropic/claude-3-opus",
			"openai/gpt-4-turbo",
			"openai/gpt-4o",
		},
		"openai": {
			"gpt-4o",
			"gpt-4-turbo",
			"gpt-4",
			"gpt-3.5-turbo",
		},
		"anthropic": {
			"claude-3-5-sonnet-20241022",
			"claude-3-opus-20240229",
			"claude-3-haiku-20240307",
		},
		"nvidia": {
			"nvidia/llama-3.1-nemotron-70b-instruct",
			"nvidia/llama-3.1-nemotron-51b-instruct",
		},
		"gemini": {
			"gemini-2.0-flash",
			"gemini-1.5-pro",
			"gemini-1.5-flash",
		},
		"mistral": {
			"mistral-large-latest",
			"mistral-small-latest",
		},
		"bedrock": {
			"anthropic.claude-3-5-sonnet-20240620-v1:0",
			"amazon.nova-pro-v1:0",
		},
	}
)

// Provider describes one upstream LLM backend. Format selects which
// internal/providerhttp client speaks for it; Auth selects how credentials
// are supplied. Both are optional to keep hand-written YAML terse — Format
// defaults by Name the way the teacher's DefaultProviderURLs table does,
// and Auth defaults to a plain bearer APIKey built from APIKey.
type Provider struct {
	Name           string   `json:"name" yaml:"name"`
	Format         string   `json:"format,omitempty" yaml:"format,omitempty"`
	APIBase        string   `json:"api_base_url" yaml:"url,omitempty"`
	APIKey         string   `json:"api_key" yaml:"api_key,omitempty"`
	Models         []string `json:"models" yaml:"models,omitempty"`
	ModelWhitelist []string `json:"model_whitelist,omitempty" yaml:"model_whitelist,omitempty"`
	DefaultModels  []string `json:"default_models,omitempty" yaml:"default_models,omitempty"`

	// Auth overrides the default api_key auth built from APIKey. Kind is one
	// of "api_key", "aws", "none".
	Auth AuthSettings `json:"auth,omitempty" yaml:"auth,omitempty"`

	// TimeoutSeconds overrides the client-wide default HTTP timeout for
	// this provider (spec §4.5 "configurable per-provider timeout").
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// AuthSettings is the on-disk shape of an auth.Config, per spec §4.8.
type AuthSettings struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// api_key
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// aws
	AccessKey    string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey    string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	SessionToken string `json:"session_token,omitempty" yaml:"session_token,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Service      string `json:"service,omitempty" yaml:"service,omitempty"`
}

type RouterConfig struct {
	Default     string `json:"default" yaml:"default,omitempty"`
	Think       string `json:"think,omitempty" yaml:"think,omitempty"`
	Background  string `json:"background,omitempty" yaml:"background,omitempty"`
	LongContext string `json:"longContext,omitempty" yaml:"long_context,omitempty"`
	WebSearch   string `json:"webSearch,omitempty" yaml:"web_search,omitempty"`
}

// RetryConfig is the on-disk shape of a retry.Policy (spec §4.9).
type RetryConfig struct {
	MaxAttempts int  `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	BaseDelayMS int  `json:"base_delay_ms,omitempty" yaml:"base_delay_ms,omitempty"`
	MaxDelayMS  int  `json:"max_delay_ms,omitempty" yaml:"max_delay_ms,omitempty"`
	Jitter      bool `json:"jitter,omitempty" yaml:"jitter,omitempty"`
}

type Config struct {
	Host        string       `json:"HOST,omitempty" yaml:"host,omitempty"`
	Port        int          `json:"PORT,omitempty" yaml:"port,omitempty"`
	APIKey      string       `json:"APIKEY,omitempty" yaml:"api_key,omitempty"`
	Providers   []Provider   `json:"Providers" yaml:"providers"`
	Router      RouterConfig `json:"Router" yaml:"router,omitempty"`
	CatalogPath string       `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`
	Retry       RetryConfig  `json:"retry,omitempty" yaml:"retry,omitempty"`
}

type Manager struct {
	baseDir     string
	jsonPath    string
	yamlPath    string
	configValue atomic.Value
}

func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir:  baseDir,
		jsonPath: filepath.Join(baseDir, DefaultConfigFilename),
		yamlPath: filepath.Join(baseDir, DefaultYAMLFilename),
	}
}

// createMinimalConfig creates a minimal configuration with all providers using CCO_API_KEY
func (m *Manager) createMinimalConfig() Config {
	apiKey := os.Getenv("CCO_API_KEY")

	return Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		CatalogPath: filepath.Join(m.baseDir, DefaultCatalogFilename),
		Providers: []Provider{
			{Name: "openrouter", APIKey: apiKey},
			{Name: "openai", APIKey: apiKey},
			{Name: "anthropic", APIKey: apiKey},
			{Name: "nvidia", APIKey: apiKey},
			{Name: "gemini", APIKey: apiKey},
		},
		Router: RouterConfig{
			Default:     "openrouter,anthropic/claude-3.5-sonnet",
			Think:       "openai,o1-preview",
			Background:  "anthropic,claude-3-haiku-20240307",
			LongContext: "anthropic,claude-3-5-sonnet-20241022",
			WebSearch:   "openrouter,perplexity/llama-3.1-sonar-huge-128k-online",
		},
	}
}

func (m *Manager) Load() (*Config, error) {
	var cfg Config
	var err error

	// Check if CCO_API_KEY is set - if so, we can run without a config file
	ccoAPIKey := os.Getenv("CCO_API_KEY")
	
	// Try YAML first (takes precedence)
	if _, yamlErr := os.Stat(m.yamlPath); yamlErr == nil {
		cfg, err = m.loadYAML()
		if err != nil {
			return nil, fmt.Errorf("load YAML config: %w", err)
		}
	} else if _, jsonErr := os.Stat(m.jsonPath); jsonErr == nil {
		cfg, err = m.loadJSON()
		if err != nil {
			return nil, fmt.Errorf("load JSON config: %w", err)
		}
	} else if ccoAPIKey != "" {
		// No config file found, but CCO_API_KEY is set - create minimal config
		cfg = m.createMinimalConfig()
	} else {
		return nil, fmt.Errorf("no configuration file found (looked for %s or %s) and CCO_API_KEY environment variable not set", m.yamlPath, m.jsonPath)
	}

	// Apply defaults and validation
	if err := m.applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	m.configValue.Store(&cfg)
	return &cfg, nil
}

func (m *Manager) loadYAML() (Config, error) {
	var cfg Config

	data, err := os.ReadFile(m.yamlPath)
	if err != nil {
		return cfg, fmt.Errorf("read YAML config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal YAML config: %w", err)
	}

	return cfg, nil
}

func (m *Manager) loadJSON() (Config, error) {
	var cfg Config

	data, err := os.ReadFile(m.jsonPath)
	if err != nil {
		return cfg, fmt.Errorf("read JSON config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal JSON config: %w", err)
	}

	return cfg, nil
}

func (m *Manager) applyDefaults(cfg *Config) error {
	// Set basic defaults
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelayMS == 0 {
		cfg.Retry.BaseDelayMS = 500
	}
	if cfg.Retry.MaxDelayMS == 0 {
		cfg.Retry.MaxDelayMS = 30000
	}

	// Apply provider defaults
	for i := range cfg.Providers {
		provider := &cfg.Providers[i]

		// Set default URL if not provided
		if provider.APIBase == "" {
			if defaultURL, exists := DefaultProviderURLs[provider.Name]; exists {
				provider.APIBase = defaultURL
			}
		}

		// Set default format if not provided
		if provider.Format == "" {
			if defaultFormat, exists := DefaultProviderFormats[provider.Name]; exists {
				provider.Format = defaultFormat
			} else {
				provider.Format = "openai_chat"
			}
		}

		// Default auth to a bearer api_key built from APIKey, unless the
		// provider already declares an explicit kind (e.g. "aws" for a
		// Bedrock entry).
		if provider.Auth.Kind == "" {
			provider.Auth.Kind = "api_key"
		}

		// Set default models if not provided
		if len(provider.DefaultModels) == 0 {
			if defaultModels, exists := DefaultProviderModels[provider.Name]; exists {
				provider.DefaultModels = make([]string, len(defaultModels))
				copy(provider.DefaultModels, defaultModels)
			}
		}

		// Validate model whitelist against default models if provided
		if len(provider.ModelWhitelist) > 0 && len(provider.DefaultModels) > 0 {
			// Filter default models based on whitelist
			var filteredDefaults []string
			for _, model := range provider.DefaultModels {
				for _, whitelisted := range provider.ModelWhitelist {
					if strings.Contains(model, whitelisted) || model == whitelisted {
						filteredDefaults = append(filteredDefaults, model)
						break
					}
				}
			}
			provider.DefaultModels = filteredDefaults
		}
	}

	return nil
}

func (m *Manager) Get() *Config {
	if v := m.configValue.Load(); v != nil {
		return v.(*Config)
	}

	cfg, err := m.Load()
	if err != nil {
		// Return a config with defaults if loading fails
		return &Config{
			Host: DefaultHost,
			Port: DefaultPort,
		}
	}
	return cfg
}

func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Prefer YAML format for new saves
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal YAML config: %w", err)
	}

	if err := os.WriteFile(m.yamlPath, data, 0644); err != nil {
		return fmt.Errorf("write YAML config file: %w", err)
	}

	m.configValue.Store(cfg)
	return nil
}

func (m *Manager) SaveAsYAML(cfg *Config) error {
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal YAML config: %w", err)
	}

	if err := os.WriteFile(m.yamlPath, data, 0644); err != nil {
		return fmt.Errorf("write YAML config file: %w", err)
	}

	m.configValue.Store(cfg)
	return nil
}

func (m *Manager) SaveAsJSON(cfg *Config) error {
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON config: %w", err)
	}

	if err := os.WriteFile(m.jsonPath, data, 0644); err != nil {
		return fmt.Errorf("write JSON config file: %w", err)
	}

	m.configValue.Store(cfg)
	return nil
}

func (m *Manager) GetPath() string {
	// Return YAML path if it exists, otherwise JSON path
	if _, err := os.Stat(m.yamlPath); err == nil {
		return m.yamlPath
	}
	return m.jsonPath
}

func (m *Manager) GetYAMLPath() string {
	return m.yamlPath
}

func (m *Manager) GetJSONPath() string {
	return m.jsonPath
}

func (m *Manager) Exists() bool {
	_, yamlErr := os.Stat(m.yamlPath)
	_, jsonErr := os.Stat(m.jsonPath)
	return yamlErr == nil || jsonErr == nil
}

func (m *Manager) HasYAML() bool {
	_, err := os.Stat(m.yamlPath)
	return err == nil
}

func (m *Manager) HasJSON() bool {
	_, err := os.Stat(m.jsonPath)
	return err == nil
}

// CreateExampleYAML creates an example YAML configuration with all available providers
func (m *Manager) CreateExampleYAML() error {
	cfg := &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		APIKey:      "your-proxy-api-key-here", // Optional API key to protect the proxy
		CatalogPath: filepath.Join(m.baseDir, DefaultCatalogFilename),
		Providers: []Provider{
			{
				Name:   "openrouter",
				APIKey: "your-openrouter-api-key",
				// URL will be set to default
				// DefaultModels will be populated from defaults
				ModelWhitelist: []string{"claude", "gpt-4"}, // Optional: restrict to specific models
			},
			{
				Name:   "openai",
				APIKey: "your-openai-api-key",
			},
			{
				Name:   "anthropic",
				APIKey: "your-anthropic-api-key",
			},
			{
				Name:   "nvidia",
				APIKey: "your-nvidia-api-key",
			},
			{
				Name:   "gemini",
				APIKey: "your-gemini-api-key",
			},
			{
				Name: "mistral",
				APIKey: "your-mistral-api-key",
			},
			{
				Name: "bedrock",
				Auth: AuthSettings{
					Kind:    "aws",
					Region:  "us-east-1",
					Service: "bedrock",
				},
			},
		},
		Router: RouterConfig{
			Default:     "openrouter/anthropic/claude-3.5-sonnet",
			Think:       "openai/o1-preview",
			Background:  "anthropic/claude-3-haiku-20240307",
			LongContext: "anthropic/claude-3-5-sonnet-20241022",
			WebSearch:   "openrouter/perplexity/llama-3.1-sonar-huge-128k-online",
		},
	}

	// Apply defaults to populate URLs and default models
	if err := m.applyDefaults(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}

	return m.SaveAsYAML(cfg)
}

// IsModelAllowed checks if a model is allowed based on the provider's whitelist
func (p *Provider) IsModelAllowed(model string) bool {
	// If no whitelist is defined, all models are allowed
	if len(p.ModelWhitelist) == 0 {
		return true
	}

	// Check if model matches any whitelist entry
	for _, whitelisted := range p.ModelWhitelist {
		if strings.Contains(model, whitelisted) || model == whitelisted {
			return true
		}
	}
	return false
}

// GetAllowedModels returns all models that are allowed based on the whitelist
func (p *Provider) GetAllowedModels() []string {
	if len(p.ModelWhitelist) == 0 {
		return p.DefaultModels
	}

	var allowed []string
	for _, model := range p.DefaultModels {
		if p.IsModelAllowed(model) {
			allowed = append(allowed, model)
		}
	}
	return allowed
}
