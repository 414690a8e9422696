// Package types provides the core data types for the Solace server.
package types

// SessionStatus is the lifecycle state of a chat session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session is a single conversation thread owned by one user. Messages are
// append-only and stored in insertion order, which is also chronological
// and display order.
type Session struct {
	ID       string        `json:"sessionId"`
	OwnerID  string        `json:"ownerId"`
	Status   SessionStatus `json:"status"`
	Messages []Message     `json:"messages"`
	Time     SessionTime   `json:"time"`
}

// SessionTime contains timestamps for a session, in unix milliseconds.
type SessionTime struct {
	Started int64 `json:"started"`
	Updated int64 `json:"updated"`
}

// Summary returns the session without its message log, for list views.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Status:       s.Status,
		MessageCount: len(s.Messages),
		Time:         s.Time,
	}
}

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	ID           string        `json:"sessionId"`
	Status       SessionStatus `json:"status"`
	MessageCount int           `json:"messageCount"`
	Time         SessionTime   `json:"time"`
}
