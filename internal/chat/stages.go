package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/schema"

	"github.com/solace-ai/solace/internal/logging"
	"github.com/solace-ai/solace/pkg/types"
)

// Generator is the language-model collaborator the pipeline calls. It is
// satisfied by provider.Provider; tests substitute a scripted fake.
type Generator interface {
	Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

const (
	// stageTimeout bounds each model call. A call that does not complete
	// in time is treated identically to a call failure.
	stageTimeout = 30 * time.Second

	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
	maxRetries           = 2
)

// fallbackReply is returned verbatim when the response stage fails. The
// substitution is a success path, never an error to the caller.
const fallbackReply = "I understand you're sharing something important with me. " +
	"While I'm experiencing a technical issue right now, I want you to know that " +
	"your feelings and experiences matter. If you're in crisis or need immediate " +
	"support, please consider reaching out to a mental health professional or crisis hotline."

const analysisPromptTemplate = `Analyze this support-conversation message and provide insights. Return ONLY a valid JSON object with no markdown formatting or additional text.
Message: %s
Previous messages: %s

Required JSON structure:
{
  "emotionalState": "string (e.g., anxious, depressed, hopeful, angry, neutral)",
  "themes": ["string array of conversation themes"],
  "riskLevel": number (0-10, where 0 is no risk, 10 is high risk),
  "recommendedApproach": "string (CBT, mindfulness, validation, etc.)",
  "progressIndicators": ["string array of positive/negative indicators"]
}`

const responsePromptTemplate = `You are a supportive conversation assistant. Provide a supportive, empathetic response that:

1. Acknowledges the user's feelings and validates their experience
2. Uses appropriate therapeutic techniques based on the analysis
3. Maintains professional boundaries while being warm and supportive
4. Considers safety and well-being
5. Encourages positive coping strategies
6. Does not diagnose or replace professional therapy

User's message: %s
Analysis: %s
Recent conversation context: %s

Provide a thoughtful, professional response that helps the user process their thoughts and feelings while maintaining appropriate boundaries.`

// analyze derives a structured Analysis from the message and recent history.
// Any failure (call, timeout, malformed output, invalid risk level) is
// recovered locally by substituting the fixed default.
func analyze(ctx context.Context, gen Generator, text string, recent []types.Message) types.Analysis {
	prompt := fmt.Sprintf(analysisPromptTemplate, text, marshalHistory(recent))

	raw, err := generate(ctx, gen, prompt)
	if err != nil {
		logging.Warn().Err(err).Msg("analysis call failed, using default")
		return types.DefaultAnalysis()
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		logging.Warn().Err(err).Str("raw", raw).Msg("analysis parse failed, using default")
		return types.DefaultAnalysis()
	}
	return analysis
}

// respond produces the user-facing reply. On failure the fixed fallback is
// returned together with the underlying error for operator diagnostics;
// the fallback itself counts as success.
func respond(ctx context.Context, gen Generator, text string, analysis types.Analysis, recent []types.Message) (string, error) {
	analysisJSON, _ := json.Marshal(analysis)
	prompt := fmt.Sprintf(responsePromptTemplate, text, analysisJSON, marshalHistory(recent))

	reply, err := generate(ctx, gen, prompt)
	if err != nil {
		return fallbackReply, err
	}
	return strings.TrimSpace(reply), nil
}

// generate runs one model call with a timeout and exponential backoff with
// jitter on transient failures.
func generate(ctx context.Context, gen Generator, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, stageTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval

	var content string
	op := func() error {
		msg, err := gen.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			return err
		}
		content = msg.Content
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)); err != nil {
		return "", err
	}
	return content, nil
}

// parseAnalysis decodes the model's raw analysis output. The risk level
// must be an integer in [0,10]; anything else is a parse failure.
func parseAnalysis(raw string) (types.Analysis, error) {
	cleaned := stripCodeFences(raw)

	var decoded struct {
		EmotionalState      string      `json:"emotionalState"`
		Themes              []string    `json:"themes"`
		RiskLevel           json.Number `json:"riskLevel"`
		RecommendedApproach string      `json:"recommendedApproach"`
		ProgressIndicators  []string    `json:"progressIndicators"`
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return types.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	risk, err := decoded.RiskLevel.Int64()
	if err != nil {
		return types.Analysis{}, fmt.Errorf("risk level not an integer: %q", decoded.RiskLevel)
	}
	if risk < 0 || risk > 10 {
		return types.Analysis{}, fmt.Errorf("risk level out of range: %d", risk)
	}

	return types.Analysis{
		EmotionalState:      decoded.EmotionalState,
		Themes:              decoded.Themes,
		RiskLevel:           int(risk),
		RecommendedApproach: decoded.RecommendedApproach,
		ProgressIndicators:  decoded.ProgressIndicators,
	}, nil
}

// stripCodeFences removes surrounding ``` markers the model sometimes wraps
// JSON output in.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// marshalHistory renders a message window as JSON context for a prompt.
func marshalHistory(recent []types.Message) string {
	if len(recent) == 0 {
		return "[]"
	}
	window := make([]map[string]string, 0, len(recent))
	for _, msg := range recent {
		window = append(window, map[string]string{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}
	data, err := json.Marshal(window)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// lastN returns the trailing n messages of history.
func lastN(messages []types.Message, n int) []types.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
