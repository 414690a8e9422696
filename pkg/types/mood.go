package types

// MoodEntry is a discrete mood-score record tied to an authenticated user.
// Score is an integer in [0,100].
type MoodEntry struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Score     int    `json:"score"`
	Note      string `json:"note,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
