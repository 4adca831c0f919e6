package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// Synthesis polishes a decision explanation into creator-facing language
// using an LLM. It is strictly optional: with no model configured every
// call reports the capability as unavailable and the pipeline keeps the
// heuristic explanation.
type Synthesis struct {
	logger  *logging.Logger
	model   llms.Model
	limiter *rate.Limiter
}

// NewSynthesis creates the narrative capability. A nil model disables it.
func NewSynthesis(logger *logging.Logger, model llms.Model, requestsPerSecond float64) *Synthesis {
	if logger == nil {
		logger = logging.NewNop()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Synthesis{
		logger:  logger.Named("synthesis"),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (s *Synthesis) Name() string { return "synthesis" }

// Available reports whether a model is configured.
func (s *Synthesis) Available() bool { return s.model != nil }

// Narrate rewrites the verdict and raw advice into a short, friendly note.
func (s *Synthesis) Narrate(ctx context.Context, verdict string, advice []string) (string, error) {
	if s.model == nil {
		return "", agent.ErrCapabilityUnavailable
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a social media coach. Verdict: %s. Advice points:\n%s\nRewrite this as one short, encouraging paragraph for the creator. Keep every concrete recommendation.",
		verdict, "- "+strings.Join(advice, "\n- "),
	)

	out, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt,
		llms.WithTemperature(0.4),
		llms.WithMaxTokens(200),
	)
	if err != nil {
		s.logger.Warn(ctx, "narration failed", zap.Error(err))
		return "", fmt.Errorf("generate narration: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Invoke satisfies the Capability contract so the narrator can be listed in
// the registry. Requests never carry a decision, so direct invocation only
// reports availability.
func (s *Synthesis) Invoke(ctx context.Context, req *agent.Request) (agent.Result, error) {
	if s.model == nil {
		return agent.Skipped("no language model configured"), nil
	}
	return agent.Analyzed(map[string]any{"available": true}, ""), nil
}
