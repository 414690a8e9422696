package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solace-ai/solace/internal/storage"
	"github.com/solace-ai/solace/pkg/types"
)

// Store owns Session records. All reads and writes are scoped to the owning
// user; distinct owners never contend for the same key.
type Store interface {
	// Create makes a new active session for ownerID.
	Create(ctx context.Context, ownerID string) (*types.Session, error)

	// Get returns the session, or ErrNotFound when it does not exist for
	// that owner.
	Get(ctx context.Context, sessionID, ownerID string) (*types.Session, error)

	// ListByOwner returns the owner's sessions, most recently updated
	// first; ties break by creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]*types.Session, error)

	// Put writes the whole session document. The write is all-or-nothing.
	Put(ctx context.Context, session *types.Session) error
}

// generateID returns a new ULID. ULIDs are collision-resistant and sort
// lexicographically in creation order.
func generateID() string {
	return ulid.Make().String()
}

// newSession builds a fresh active session owned by ownerID.
func newSession(ownerID string) *types.Session {
	now := time.Now().UnixMilli()
	return &types.Session{
		ID:       generateID(),
		OwnerID:  ownerID,
		Status:   types.SessionActive,
		Messages: []types.Message{},
		Time: types.SessionTime{
			Started: now,
			Updated: now,
		},
	}
}

// sortSessions orders sessions most recently updated first, ULID ascending
// on ties so equal timestamps keep creation order.
func sortSessions(sessions []*types.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Time.Updated != sessions[j].Time.Updated {
			return sessions[i].Time.Updated > sessions[j].Time.Updated
		}
		return sessions[i].ID < sessions[j].ID
	})
}

// FileStore persists sessions as JSON documents under
// ["session", ownerID, sessionID].
type FileStore struct {
	storage *storage.Storage
}

// NewFileStore creates a session store over the given storage.
func NewFileStore(store *storage.Storage) *FileStore {
	return &FileStore{storage: store}
}

func (s *FileStore) Create(ctx context.Context, ownerID string) (*types.Session, error) {
	session := newSession(ownerID)
	if err := s.storage.Put(ctx, []string{"session", ownerID, session.ID}, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *FileStore) Get(ctx context.Context, sessionID, ownerID string) (*types.Session, error) {
	var session types.Session
	err := s.storage.Get(ctx, []string{"session", ownerID, sessionID}, &session)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *FileStore) ListByOwner(ctx context.Context, ownerID string) ([]*types.Session, error) {
	var sessions []*types.Session
	err := s.storage.Scan(ctx, []string{"session", ownerID}, func(key string, data json.RawMessage) error {
		var session types.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		sessions = append(sessions, &session)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortSessions(sessions)
	return sessions, nil
}

func (s *FileStore) Put(ctx context.Context, session *types.Session) error {
	return s.storage.Put(ctx, []string{"session", session.OwnerID, session.ID}, session)
}

// MemStore is an in-process session store for tests and development.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*types.Session // ownerID -> sessionID -> session
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]map[string]*types.Session)}
}

func (s *MemStore) Create(ctx context.Context, ownerID string) (*types.Session, error) {
	session := newSession(ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[ownerID] == nil {
		s.sessions[ownerID] = make(map[string]*types.Session)
	}
	s.sessions[ownerID][session.ID] = cloneSession(session)

	return session, nil
}

func (s *MemStore) Get(ctx context.Context, sessionID, ownerID string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[ownerID][sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *MemStore) ListByOwner(ctx context.Context, ownerID string) ([]*types.Session, error) {
	s.mu.RLock()
	sessions := make([]*types.Session, 0, len(s.sessions[ownerID]))
	for _, session := range s.sessions[ownerID] {
		sessions = append(sessions, cloneSession(session))
	}
	s.mu.RUnlock()

	sortSessions(sessions)
	return sessions, nil
}

func (s *MemStore) Put(ctx context.Context, session *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[session.OwnerID] == nil {
		s.sessions[session.OwnerID] = make(map[string]*types.Session)
	}
	s.sessions[session.OwnerID][session.ID] = cloneSession(session)
	return nil
}

// cloneSession copies a session so callers never alias stored state.
func cloneSession(session *types.Session) *types.Session {
	clone := *session
	clone.Messages = make([]types.Message, len(session.Messages))
	copy(clone.Messages, session.Messages)
	return &clone
}
