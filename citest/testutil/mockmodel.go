package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// MockModelAnalysis is the analysis document the mock model returns.
const MockModelAnalysis = `{
	"emotionalState": "reflective",
	"themes": ["daily life"],
	"riskLevel": 1,
	"recommendedApproach": "supportive",
	"progressIndicators": ["showing up regularly"]
}`

// MockModelReply is the reply the mock model returns for response prompts.
const MockModelReply = "That sounds meaningful. What felt most important about it?"

// MockModel stands in for a chat model. Analysis prompts get a canned
// analysis document, response prompts get a canned reply.
type MockModel struct {
	mu    sync.Mutex
	calls int

	// Fail makes every call return an error, for outage scenarios.
	Fail bool
}

// Generate implements the model contract.
func (m *MockModel) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	fail := m.Fail
	m.mu.Unlock()

	if fail {
		return nil, context.DeadlineExceeded
	}

	if strings.HasPrefix(messages[len(messages)-1].Content, "Analyze") {
		return schema.AssistantMessage(MockModelAnalysis, nil), nil
	}
	return schema.AssistantMessage(MockModelReply, nil), nil
}

// Calls returns how many times the model was invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
