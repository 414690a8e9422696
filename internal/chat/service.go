// Package chat implements the chat-session lifecycle and message-processing
// pipeline: session creation and lookup, ordered message history, the
// analyze-then-respond interaction with the language model, and the stress
// heuristic that interrupts the normal reply flow.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/solace-ai/solace/internal/event"
	"github.com/solace-ai/solace/internal/logging"
	"github.com/solace-ai/solace/pkg/types"
)

// Context windows handed to the two model stages.
const (
	analysisHistoryWindow = 5
	responseHistoryWindow = 3
)

// Service orchestrates message processing for chat sessions.
type Service struct {
	store    Store
	model    Generator
	detector *Detector
	notifier *event.Notifier

	// Per-session locks serialize processing cycles for one session.
	// Cross-session cycles proceed fully in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the orchestrator. The notifier may be nil, in which
// case no events are emitted.
func NewService(store Store, model Generator, detector *Detector, notifier *event.Notifier) *Service {
	return &Service{
		store:    store,
		model:    model,
		detector: detector,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// CreateSession starts a new active session for the owner.
func (s *Service) CreateSession(ctx context.Context, ownerID string) (*types.Session, error) {
	session, err := s.store.Create(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logging.Info().Str("session", session.ID).Str("owner", ownerID).Msg("session created")
	s.notifier.Send(event.SessionCreated, event.SessionData{SessionID: session.ID, OwnerID: ownerID})

	return session, nil
}

// ListSessions returns the owner's sessions, most recently updated first.
func (s *Service) ListSessions(ctx context.Context, ownerID string) ([]*types.Session, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// GetSession returns one session scoped to its owner.
func (s *Service) GetSession(ctx context.Context, sessionID, ownerID string) (*types.Session, error) {
	return s.store.Get(ctx, sessionID, ownerID)
}

// GetHistory returns the ordered message log of a session.
func (s *Service) GetHistory(ctx context.Context, sessionID, ownerID string) ([]types.Message, error) {
	session, err := s.store.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// CompleteSession transitions an active session to completed.
func (s *Service) CompleteSession(ctx context.Context, sessionID, ownerID string) (*types.Session, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	if session.Status == types.SessionCompleted {
		return nil, ErrSessionCompleted
	}

	session.Status = types.SessionCompleted
	session.Time.Updated = time.Now().UnixMilli()
	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.notifier.Send(event.SessionCompleted, event.SessionData{SessionID: sessionID, OwnerID: ownerID})
	return session, nil
}

// ProcessMessage runs one full processing cycle for an inbound message:
// validate, detect stress, analyze, respond, append both turns, persist,
// then emit a best-effort processing event.
//
// A stress match short-circuits the model stages: only the user turn is
// appended and a fixed activity suggestion replaces the generated reply.
// The skipped assistant turn is not retried on the next message.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, ownerID, text string) (*types.ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	if session.Status == types.SessionCompleted {
		return nil, ErrSessionCompleted
	}

	if prompt := s.detector.Detect(text); prompt != nil {
		return s.shortCircuit(ctx, session, text, prompt)
	}

	analysis := analyze(ctx, s.model, text, lastN(session.Messages, analysisHistoryWindow))

	reply, respondErr := respond(ctx, s.model, text, analysis, lastN(session.Messages, responseHistoryWindow))
	if respondErr != nil {
		// Fallback text already substituted; keep the detail for operators.
		logging.Error().
			Str("session", session.ID).
			Err(respondErr).
			Msg("response generation failed, serving fallback")
	}

	now := time.Now().UnixMilli()
	session.Messages = append(session.Messages,
		types.Message{
			Role:      types.RoleUser,
			Content:   text,
			Timestamp: now,
		},
		types.Message{
			Role:      types.RoleAssistant,
			Content:   reply,
			Timestamp: time.Now().UnixMilli(),
			Metadata: &types.MessageMetadata{
				Analysis: analysis,
				Progress: types.Progress{
					EmotionalState: analysis.EmotionalState,
					RiskLevel:      analysis.RiskLevel,
				},
			},
		},
	)
	session.Time.Updated = time.Now().UnixMilli()

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	logging.Info().
		Str("session", session.ID).
		Int("riskLevel", analysis.RiskLevel).
		Int("messages", len(session.Messages)).
		Msg("message processed")

	s.notifier.Send(event.MessageProcessed, event.MessageProcessedData{
		SessionID:    session.ID,
		OwnerID:      ownerID,
		RiskLevel:    analysis.RiskLevel,
		MessageCount: len(session.Messages),
	})

	return &types.ChatResult{Reply: reply, Analysis: analysis}, nil
}

// shortCircuit handles a stress-detected cycle: append the user turn only,
// persist, and return the activity suggestion. Processing events are still
// emitted for the analytics pipeline.
func (s *Service) shortCircuit(ctx context.Context, session *types.Session, text string, prompt *types.StressPrompt) (*types.ChatResult, error) {
	session.Messages = append(session.Messages, types.Message{
		Role:      types.RoleUser,
		Content:   text,
		Timestamp: time.Now().UnixMilli(),
	})
	session.Time.Updated = time.Now().UnixMilli()

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	logging.Info().
		Str("session", session.ID).
		Str("trigger", prompt.Trigger).
		Str("activity", prompt.Activity.Type).
		Msg("stress signal detected, offering activity")

	s.notifier.Send(event.StressDetected, event.StressDetectedData{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Trigger:   prompt.Trigger,
		Activity:  prompt.Activity.Type,
	})
	s.notifier.Send(event.MessageProcessed, event.MessageProcessedData{
		SessionID:    session.ID,
		OwnerID:      session.OwnerID,
		Stress:       true,
		MessageCount: len(session.Messages),
	})

	reply := fmt.Sprintf(
		"It sounds like you're carrying a lot right now. Before we continue, would you like to try a short calming activity? %s: %s.",
		prompt.Activity.Title, prompt.Activity.Description,
	)

	return &types.ChatResult{
		Reply:        reply,
		Analysis:     types.DefaultAnalysis(),
		StressPrompt: prompt,
	}, nil
}

// lockFor returns the mutex serializing writes for one session.
func (s *Service) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
