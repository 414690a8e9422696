// Package provider abstracts the language-model backend behind a single
// pluggable interface, built on the Eino framework. The chat pipeline only
// ever sees Provider; which backend answers is a configuration concern.
package provider

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Provider is one language-model backend.
type Provider interface {
	// ID returns the provider identifier, e.g. "anthropic".
	ID() string

	// Generate produces a single completion for the given messages.
	// A transient failure or timeout is returned as an error; callers
	// decide the degradation policy.
	Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

// chatModelProvider adapts an Eino ChatModel to Provider.
type chatModelProvider struct {
	id        string
	chatModel model.ToolCallingChatModel
}

func (p *chatModelProvider) ID() string { return p.id }

func (p *chatModelProvider) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	return p.chatModel.Generate(ctx, messages)
}

// ParseModelString splits a "provider/model" selector. A bare model name
// yields an empty provider id.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}
