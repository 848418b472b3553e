// Package catalog loads model metadata and resolves a model identifier to
// its ModelSpec, per spec §3.4 and §4.7.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davincible/llm-router-go/internal/universal"
)

// ModelSpec is one catalog record.
type ModelSpec struct {
	Model             string                 `json:"model" yaml:"model"`
	Format            universal.ProviderFormat `json:"format" yaml:"format"`
	Flavor            string                 `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	DisplayName       string                 `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Parent            string                 `json:"parent,omitempty" yaml:"parent,omitempty"`
	InputCostPerM     *float64               `json:"input_cost_per_m,omitempty" yaml:"input_cost_per_m,omitempty"`
	OutputCostPerM    *float64               `json:"output_cost_per_m,omitempty" yaml:"output_cost_per_m,omitempty"`
	Reasoning         bool                   `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	MaxInputTokens    *int                   `json:"max_input_tokens,omitempty" yaml:"max_input_tokens,omitempty"`
	MaxOutputTokens   *int                   `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty"`
	SupportsStreaming bool                   `json:"supports_streaming" yaml:"supports_streaming"`
	Extra             map[string]any         `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// responsesOnlyModels is the closed set of models known to accept only the
// Responses API (spec §3.4, §4.6 rule 1).
var responsesOnlyModels = map[string]bool{
	"gpt-5-pro":      true,
	"gpt-5.1-codex":  true,
	"gpt-5-codex":    true,
	"o1-pro":         true,
	"o3-pro":         true,
}

// RequiresResponsesAPI returns true for the closed set of models that only
// accept the Responses API wire format.
func (s ModelSpec) RequiresResponsesAPI() bool {
	if responsesOnlyModels[s.Model] {
		return true
	}

	for prefix := range responsesOnlyModels {
		if strings.HasPrefix(s.Model, prefix) {
			return true
		}
	}

	return false
}

// Catalog is an immutable, read-only-shared map of model identifier to
// ModelSpec, plus an alias table.
type Catalog struct {
	specs   map[string]ModelSpec
	aliases map[string]string
}

// Load reads a JSON or YAML catalog file (a .yaml/.yml extension is parsed
// as YAML; anything else is tried as JSON, then as YAML) and builds an
// immutable Catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	type fileShape struct {
		Models  map[string]ModelSpec `json:"models" yaml:"models"`
		Aliases map[string]string    `json:"aliases" yaml:"aliases"`
	}

	var shape fileShape

	isYAML := strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")

	if isYAML {
		if err := yaml.Unmarshal(data, &shape); err != nil {
			return nil, fmt.Errorf("parse catalog yaml: %w", err)
		}
	} else if err := json.Unmarshal(data, &shape); err != nil {
		if yamlErr := yaml.Unmarshal(data, &shape); yamlErr != nil {
			return nil, fmt.Errorf("parse catalog (tried json and yaml): %w", err)
		}
	}

	return New(shape.Models, shape.Aliases), nil
}

// New builds a Catalog directly from in-memory records, used by tests and
// by config's loadCatalog when no catalog file is present.
func New(specs map[string]ModelSpec, aliases map[string]string) *Catalog {
	c := &Catalog{specs: make(map[string]ModelSpec, len(specs)), aliases: make(map[string]string, len(aliases))}

	for k, v := range specs {
		c.specs[k] = v
	}

	for k, v := range aliases {
		c.aliases[k] = v
	}

	return c
}

// Resolver resolves a model identifier against a Catalog: exact match,
// then alias fallback, then family-prefix fallback (longest matching
// known-parent prefix).
type Resolver struct {
	catalog *Catalog
}

func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// ResolvedModel is the result of Resolve: the spec found, the catalog's
// native format for it, and the identifier actually matched (which may
// differ from the input after alias/prefix fallback).
type ResolvedModel struct {
	Spec          ModelSpec
	CatalogFormat universal.ProviderFormat
	MatchedAs     string
}

func (r *Resolver) Resolve(model string) (ResolvedModel, bool) {
	if spec, ok := r.catalog.specs[model]; ok {
		return ResolvedModel{Spec: spec, CatalogFormat: spec.Format, MatchedAs: model}, true
	}

	if alias, ok := r.catalog.aliases[model]; ok {
		if spec, ok := r.catalog.specs[alias]; ok {
			return ResolvedModel{Spec: spec, CatalogFormat: spec.Format, MatchedAs: alias}, true
		}
	}

	// Family-prefix fallback: the Vertex convention of
	// publishers/{org}/models/{name} collapsing to {name}, or any catalog
	// entry whose Parent matches a prefix of the requested model.
	if rewritten, ok := stripVertexPublisherPrefix(model); ok {
		if spec, ok := r.catalog.specs[rewritten]; ok {
			return ResolvedModel{Spec: spec, CatalogFormat: spec.Format, MatchedAs: rewritten}, true
		}
	}

	var best ResolvedModel

	bestLen := -1

	for name, spec := range r.catalog.specs {
		if spec.Parent == "" {
			continue
		}

		if strings.HasPrefix(model, spec.Parent) && len(spec.Parent) > bestLen {
			best = ResolvedModel{Spec: spec, CatalogFormat: spec.Format, MatchedAs: name}
			bestLen = len(spec.Parent)
		}
	}

	if bestLen >= 0 {
		return best, true
	}

	return ResolvedModel{}, false
}

// stripVertexPublisherPrefix rewrites publishers/{org}/models/{name} to
// {name}, per spec §6.6 scenario 6.
func stripVertexPublisherPrefix(model string) (string, bool) {
	const marker = "/models/"

	if !strings.HasPrefix(model, "publishers/") {
		return "", false
	}

	idx := strings.Index(model, marker)
	if idx < 0 {
		return "", false
	}

	return model[idx+len(marker):], true
}
