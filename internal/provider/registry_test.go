package provider

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solace-ai/solace/internal/config"
)

type fakeProvider struct {
	id string
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	return schema.AssistantMessage("ok", nil), nil
}

func TestRegistryFirstRegisteredIsDefault(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeProvider{id: "alpha"})
	reg.Register(&fakeProvider{id: "beta"})

	p, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.ID())
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeProvider{id: "alpha"})
	reg.Register(&fakeProvider{id: "beta"})

	require.NoError(t, reg.SetDefault("beta"))
	p, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "beta", p.ID())

	assert.Error(t, reg.SetDefault("missing"))
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeProvider{id: "alpha"})

	p, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.ID())

	_, err = reg.Get("missing")
	assert.Error(t, err)
}

func TestEmptyRegistryHasNoDefault(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Default()
	assert.Error(t, err)
}

func TestParseModelString(t *testing.T) {
	providerID, modelID := ParseModelString("anthropic/claude-3-5-haiku-20241022")
	assert.Equal(t, "anthropic", providerID)
	assert.Equal(t, "claude-3-5-haiku-20241022", modelID)

	providerID, modelID = ParseModelString("gpt-4o-mini")
	assert.Equal(t, "", providerID)
	assert.Equal(t, "gpt-4o-mini", modelID)
}

func TestInitializeFailsWhenDefaultProviderMisconfigured(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()
	cfg.Model = "anthropic/claude-3-5-haiku-20241022"

	_, err := Initialize(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestInitializeWithNoProvidersYieldsEmptyRegistry(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()

	reg, err := Initialize(context.Background(), cfg)
	require.NoError(t, err)
	_, err = reg.Default()
	assert.Error(t, err)
}
