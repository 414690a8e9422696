package types

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a session, authored by either the user or the
// assistant. Timestamps are unix milliseconds and non-decreasing within a
// session's message sequence.
type Message struct {
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`

	// Metadata is set on assistant messages only.
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata carries the analysis attached to an assistant turn plus
// the downstream progress projection.
type MessageMetadata struct {
	Analysis Analysis `json:"analysis"`
	Progress Progress `json:"progress"`
}

// Progress is the per-turn projection surfaced alongside the reply.
type Progress struct {
	EmotionalState string `json:"emotionalState"`
	RiskLevel      int    `json:"riskLevel"`
}
