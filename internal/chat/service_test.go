package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solace-ai/solace/internal/event"
	"github.com/solace-ai/solace/pkg/types"
)

// routedGenerator answers analysis prompts with analysis JSON and response
// prompts with a fixed reply. Safe under concurrent calls.
type routedGenerator struct {
	mu           sync.Mutex
	calls        int
	analysisJSON string
	reply        string
	err          error
}

func (g *routedGenerator) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}

	prompt := messages[len(messages)-1].Content
	if strings.HasPrefix(prompt, "Analyze") {
		return schema.AssistantMessage(g.analysisJSON, nil), nil
	}
	return schema.AssistantMessage(g.reply, nil), nil
}

func (g *routedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func healthyGenerator() *routedGenerator {
	return &routedGenerator{
		analysisJSON: validAnalysisJSON,
		reply:        "Thank you for sharing that with me.",
	}
}

func newTestService(gen Generator) (*Service, *event.Bus) {
	bus := event.NewBus()
	return NewService(
		NewMemStore(),
		gen,
		NewDetector(rand.New(rand.NewSource(7))),
		event.NewNotifier(bus),
	), bus
}

func TestProcessMessageHappyPath(t *testing.T) {
	gen := healthyGenerator()
	svc, bus := newTestService(gen)
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	result, err := svc.ProcessMessage(ctx, session.ID, "u1", "Hello")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Reply)
	assert.Nil(t, result.StressPrompt)
	assert.GreaterOrEqual(t, result.Analysis.RiskLevel, 0)
	assert.LessOrEqual(t, result.Analysis.RiskLevel, 10)

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Nil(t, history[0].Metadata)

	assert.Equal(t, types.RoleAssistant, history[1].Role)
	assert.Equal(t, result.Reply, history[1].Content)
	require.NotNil(t, history[1].Metadata)
	assert.Equal(t, result.Analysis, history[1].Metadata.Analysis)
	assert.Equal(t, result.Analysis.RiskLevel, history[1].Metadata.Progress.RiskLevel)

	assert.GreaterOrEqual(t, history[1].Timestamp, history[0].Timestamp)
}

func TestProcessMessageAppendsTwoTurnsPerCall(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	const n = 3
	for i := 0; i < n; i++ {
		_, err := svc.ProcessMessage(ctx, session.ID, "u1", "tell me more")
		require.NoError(t, err)

		history, err := svc.GetHistory(ctx, session.ID, "u1")
		require.NoError(t, err)
		assert.Len(t, history, 2*(i+1))
	}
}

func TestProcessMessageStressShortCircuit(t *testing.T) {
	gen := healthyGenerator()
	svc, bus := newTestService(gen)
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	result, err := svc.ProcessMessage(ctx, session.ID, "u1", "I feel overwhelmed today")
	require.NoError(t, err)

	require.NotNil(t, result.StressPrompt)
	assert.Equal(t, "overwhelmed", result.StressPrompt.Trigger)
	assert.Contains(t, result.Reply, result.StressPrompt.Activity.Title)
	assert.Equal(t, types.DefaultAnalysis(), result.Analysis)
	assert.Zero(t, gen.callCount(), "no model calls on a stress cycle")

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1, "only the user turn is appended")
	assert.Equal(t, types.RoleUser, history[0].Role)
}

func TestProcessMessageStressCycleDoesNotRetrySkippedTurn(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, session.ID, "u1", "so much pressure at work")
	require.NoError(t, err)

	result, err := svc.ProcessMessage(ctx, session.ID, "u1", "anyway, about my garden")
	require.NoError(t, err)
	assert.Nil(t, result.StressPrompt)

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	// 1 from the stress cycle, 2 from the normal cycle.
	assert.Len(t, history, 3)
}

func TestProcessMessageWrongOwner(t *testing.T) {
	gen := healthyGenerator()
	svc, bus := newTestService(gen)
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, session.ID, "u2", "Hello")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, gen.callCount())

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, history, "failed call must not mutate the session")
}

func TestProcessMessageEmptyText(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.ProcessMessage(ctx, session.ID, "u1", text)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestProcessMessageModelOutage(t *testing.T) {
	gen := &routedGenerator{err: errors.New("service unavailable")}
	svc, bus := newTestService(gen)
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	result, err := svc.ProcessMessage(ctx, session.ID, "u1", "Hello")
	require.NoError(t, err, "model outage is never surfaced as an error")

	assert.Equal(t, fallbackReply, result.Reply)
	assert.Equal(t, types.DefaultAnalysis(), result.Analysis)

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, history, 2, "both turns still recorded under outage")
}

func TestProcessMessageCompletedSession(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.CompleteSession(ctx, session.ID, "u1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, session.ID, "u1", "Hello")
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestCompleteSession(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	completed, err := svc.CompleteSession(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, completed.Status)

	_, err = svc.CompleteSession(ctx, session.ID, "u1")
	assert.ErrorIs(t, err, ErrSessionCompleted)

	_, err = svc.CompleteSession(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessMessageConcurrentSameSession(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessMessage(ctx, session.ID, "u1", "checking in")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := svc.GetHistory(ctx, session.ID, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2*workers, "no lost or duplicated appends")

	// Turn pairs must not interleave.
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, types.RoleUser, history[i].Role)
		assert.Equal(t, types.RoleAssistant, history[i+1].Role)
	}

	// Timestamps are non-decreasing across the whole log.
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].Timestamp, history[i-1].Timestamp)
	}
}

func TestProcessMessageMovesSessionToFrontOfList(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)
	second, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.ProcessMessage(ctx, first.ID, "u1", "Hello")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}

func TestProcessMessageEmitsEvents(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	var mu sync.Mutex
	var processed []event.MessageProcessedData
	bus.Subscribe(event.MessageProcessed, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		processed = append(processed, e.Data.(event.MessageProcessedData))
	})

	var stress []event.StressDetectedData
	bus.Subscribe(event.StressDetected, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		stress = append(stress, e.Data.(event.StressDetectedData))
	})

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, session.ID, "u1", "Hello")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, session.ID, "u1", "I'm exhausted")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2 && len(stress) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, processed[0].Stress)
	assert.True(t, processed[1].Stress, "stress cycles still emit the processing event")
	assert.Equal(t, "exhausted", stress[0].Trigger)
}

func TestCreateSessionIsolatedPerOwner(t *testing.T) {
	svc, bus := newTestService(healthyGenerator())
	defer bus.Close()
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.CreateSession(ctx, "u2")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
