// Package mood records and lists discrete mood-score entries per owner.
package mood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solace-ai/solace/internal/event"
	"github.com/solace-ai/solace/internal/storage"
	"github.com/solace-ai/solace/pkg/types"
)

// ErrInvalidScore is returned when a score is outside [0, 100].
var ErrInvalidScore = errors.New("score must be between 0 and 100")

// Service records and lists mood entries.
type Service struct {
	storage  *storage.Storage
	notifier *event.Notifier
}

// NewService creates a mood service backed by storage.
func NewService(st *storage.Storage, notifier *event.Notifier) *Service {
	return &Service{storage: st, notifier: notifier}
}

// Record validates and persists a mood entry for ownerID.
func (s *Service) Record(ctx context.Context, ownerID string, score int, note string) (*types.MoodEntry, error) {
	if score < 0 || score > 100 {
		return nil, ErrInvalidScore
	}

	entry := &types.MoodEntry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Score:     score,
		Note:      strings.TrimSpace(note),
		Timestamp: time.Now().UnixMilli(),
	}

	if err := s.storage.Put(ctx, []string{"mood", ownerID, entry.ID}, entry); err != nil {
		return nil, fmt.Errorf("store mood entry: %w", err)
	}

	s.notifier.Send(event.MoodRecorded, event.MoodRecordedData{Entry: entry})

	return entry, nil
}

// List returns all of ownerID's mood entries, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*types.MoodEntry, error) {
	var entries []*types.MoodEntry

	err := s.storage.Scan(ctx, []string{"mood", ownerID}, func(key string, data json.RawMessage) error {
		var entry types.MoodEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("decode mood entry %s: %w", key, err)
		}
		entries = append(entries, &entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})

	if entries == nil {
		entries = []*types.MoodEntry{}
	}
	return entries, nil
}
