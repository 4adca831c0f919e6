// Package orchestrator coordinates the pipeline:
// OBSERVE, UNDERSTAND, REASON, ADVISE, REMEMBER.
package orchestrator

import (
	"errors"

	"github.com/fyrsmithlabs/advisord/internal/memory"
	"github.com/fyrsmithlabs/advisord/internal/strategy"
)

// ErrMissingUserID is the pipeline's only hard failure: without a user the
// engine cannot scope history or memory.
var ErrMissingUserID = errors.New("orchestrator: missing user id")

// State tracks where a request is in the pipeline. Transitions are linear;
// capability failures degrade the result instead of introducing an error
// state.
type State string

const (
	StateCreated       State = "created"
	StateObserving     State = "observing"
	StateUnderstanding State = "understanding"
	StateReasoning     State = "reasoning"
	StateAdvising      State = "advising"
	StateRemembered    State = "remembered"
	StateDone          State = "done"
)

// Response is the pipeline's product for one request.
type Response struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Platform  string `json:"platform"`

	// Observations holds a one-line summary per capability, such as the
	// vision risk level, or "not analyzed" for degraded branches.
	Observations map[string]string `json:"observations"`

	Decision strategy.Decision `json:"decision"`

	// Narrative is the LLM-polished explanation, when the narrator ran.
	Narrative string `json:"narrative,omitempty"`

	// MemoryPatterns summarizes what the engine has learned about the user.
	MemoryPatterns memory.UserPatterns `json:"memory_patterns"`
}
