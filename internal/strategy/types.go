// Package strategy turns observations and history into one explainable,
// confidence-scored decision. Decide never fails: every input is optional
// and missing signals only lower confidence.
package strategy

import "time"

// Confidence grades how much signal backed a decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Verdicts, strongest to weakest.
const (
	VerdictPost       = "Post"
	VerdictTweaks     = "Post with tweaks"
	VerdictFix        = "Fix before posting"
	VerdictReconsider = "Reconsider"
)

// Decision is the engine's final product for one request.
type Decision struct {
	Confidence Confidence `json:"confidence"`

	// Score is the readiness score in [0,100].
	Score int `json:"score"`

	Verdict  string   `json:"verdict"`
	Advice   []string `json:"advice"`
	Warnings []string `json:"warnings,omitempty"`

	// Why is a one-sentence explanation citing the inputs.
	Why string `json:"why"`

	CreatedAt time.Time `json:"created_at"`
}
