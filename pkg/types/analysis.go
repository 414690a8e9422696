package types

// Analysis is the structured emotional summary derived from one message
// exchange. RiskLevel is always present and in [0,10]; the failure default
// is 0, never an absence.
type Analysis struct {
	EmotionalState      string   `json:"emotionalState"`
	Themes              []string `json:"themes"`
	RiskLevel           int      `json:"riskLevel"`
	RecommendedApproach string   `json:"recommendedApproach"`
	ProgressIndicators  []string `json:"progressIndicators"`
}

// DefaultAnalysis returns the fixed analysis substituted when the model call
// fails or its output cannot be parsed. Stable across calls.
func DefaultAnalysis() Analysis {
	return Analysis{
		EmotionalState:      "neutral",
		Themes:              []string{"general"},
		RiskLevel:           0,
		RecommendedApproach: "supportive",
		ProgressIndicators:  []string{"engaged in conversation"},
	}
}

// StressPrompt is the ephemeral result of the stress heuristic. It replaces
// a model-generated reply for one cycle and is never persisted.
type StressPrompt struct {
	Trigger  string   `json:"trigger"`
	Activity Activity `json:"activity"`
}

// Activity describes one calming activity from the fixed catalog.
type Activity struct {
	Type        string `json:"type"` // "breathing" | "garden" | "forest" | "waves"
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChatResult is what one processed message returns to the caller: the reply
// text, the analysis, and the stress prompt when the cycle short-circuited.
type ChatResult struct {
	Reply        string        `json:"response"`
	Analysis     Analysis      `json:"analysis"`
	StressPrompt *StressPrompt `json:"stressPrompt,omitempty"`
}
