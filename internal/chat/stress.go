package chat

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/solace-ai/solace/pkg/types"
)

// stressKeywords are matched case-insensitively by substring containment.
// The first match in list order is reported as the trigger.
var stressKeywords = []string{
	"stress",
	"anxiety",
	"worried",
	"panic",
	"overwhelmed",
	"nervous",
	"tense",
	"pressure",
	"can't cope",
	"exhausted",
}

// activities is the fixed catalog of calming activities offered when a
// stress signal interrupts the normal reply flow.
var activities = []types.Activity{
	{
		Type:        "breathing",
		Title:       "Breathing Exercise",
		Description: "Follow calming breathing exercises with visual guidance",
	},
	{
		Type:        "garden",
		Title:       "Zen Garden",
		Description: "Create and maintain your digital peaceful space",
	},
	{
		Type:        "forest",
		Title:       "Mindful Forest",
		Description: "Take a peaceful walk through a virtual forest",
	},
	{
		Type:        "waves",
		Title:       "Ocean Waves",
		Description: "Match your breath with gentle ocean waves",
	},
}

// Detector decides whether a message should short-circuit normal processing
// with a calming-activity suggestion. Matching is deterministic; only the
// activity pick draws from the injected pseudo-random source.
type Detector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDetector creates a detector drawing activity picks from rng. Tests
// inject a seeded source to make the pick deterministic.
func NewDetector(rng *rand.Rand) *Detector {
	return &Detector{rng: rng}
}

// Detect returns a StressPrompt when text contains a stress keyword, nil
// otherwise. Safe for concurrent use.
func (d *Detector) Detect(text string) *types.StressPrompt {
	lower := strings.ToLower(text)
	for _, keyword := range stressKeywords {
		if strings.Contains(lower, keyword) {
			d.mu.Lock()
			activity := activities[d.rng.Intn(len(activities))]
			d.mu.Unlock()

			return &types.StressPrompt{
				Trigger:  keyword,
				Activity: activity,
			}
		}
	}
	return nil
}
