package provider

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/solace-ai/solace/internal/config"
	"github.com/solace-ai/solace/internal/logging"
)

// Registry manages the configured providers and the default selection.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defaultID string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. The first registered provider becomes the
// default until SetDefault overrides it.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.providers) == 0 {
		r.defaultID = p.ID()
	}
	r.providers[p.ID()] = p
}

// SetDefault selects the default provider by id.
func (r *Registry) SetDefault(providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[providerID]; !ok {
		return fmt.Errorf("provider not found: %s", providerID)
	}
	r.defaultID = providerID
	return nil
}

// Get retrieves a provider by id.
func (r *Registry) Get(providerID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", providerID)
	}
	return p, nil
}

// Default returns the default provider.
func (r *Registry) Default() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultID == "" {
		return nil, fmt.Errorf("no providers configured")
	}
	return r.providers[r.defaultID], nil
}

// Initialize builds a registry from configuration. Providers whose
// construction fails are skipped with a warning, except the provider named
// by cfg.Model: that one failing is a fatal misconfiguration.
func Initialize(ctx context.Context, cfg *config.Config) (*Registry, error) {
	reg := NewRegistry()
	defaultProviderID, defaultModelID := ParseModelString(cfg.Model)

	build := func(id string) (Provider, error) {
		pc := cfg.Provider[id]
		model := ""
		if id == defaultProviderID {
			model = defaultModelID
		}
		switch id {
		case "anthropic":
			return NewAnthropic(ctx, &AnthropicConfig{
				APIKey:    pc.APIKey,
				BaseURL:   pc.BaseURL,
				Model:     model,
				MaxTokens: pc.MaxTokens,
			})
		case "openai":
			return NewOpenAI(ctx, &OpenAIConfig{
				APIKey:    pc.APIKey,
				BaseURL:   pc.BaseURL,
				Model:     model,
				MaxTokens: pc.MaxTokens,
			})
		default:
			return nil, fmt.Errorf("unknown provider: %s", id)
		}
	}

	for _, id := range candidateIDs(cfg, defaultProviderID) {
		p, err := build(id)
		if err != nil {
			if id == defaultProviderID {
				return nil, fmt.Errorf("default provider %s: %w", id, err)
			}
			logging.Warn().Str("provider", id).Err(err).Msg("skipping provider")
			continue
		}
		reg.Register(p)
	}

	if defaultProviderID != "" {
		if err := reg.SetDefault(defaultProviderID); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// candidateIDs lists the provider ids worth constructing: anything with
// explicit config, plus the default, plus anything with an API key in the
// environment.
func candidateIDs(cfg *config.Config, defaultID string) []string {
	seen := make(map[string]bool)
	var ids []string

	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	add(defaultID)
	for id := range cfg.Provider {
		add(id)
	}
	if envHas("ANTHROPIC_API_KEY") {
		add("anthropic")
	}
	if envHas("OPENAI_API_KEY") {
		add("openai")
	}

	return ids
}

func envHas(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && v != ""
}
