package event

import "github.com/solace-ai/solace/pkg/types"

// SessionData is the payload for session lifecycle events.
type SessionData struct {
	SessionID string `json:"sessionId"`
	OwnerID   string `json:"ownerId"`
}

// MessageProcessedData is the payload for chat.message.processed events.
// Stress is true when the cycle short-circuited to an activity suggestion.
type MessageProcessedData struct {
	SessionID    string `json:"sessionId"`
	OwnerID      string `json:"ownerId"`
	RiskLevel    int    `json:"riskLevel"`
	Stress       bool   `json:"stress"`
	MessageCount int    `json:"messageCount"`
}

// StressDetectedData is the payload for chat.stress.detected events.
type StressDetectedData struct {
	SessionID string `json:"sessionId"`
	OwnerID   string `json:"ownerId"`
	Trigger   string `json:"trigger"`
	Activity  string `json:"activity"`
}

// MoodRecordedData is the payload for mood.recorded events.
type MoodRecordedData struct {
	Entry *types.MoodEntry `json:"entry"`
}
