package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/logging"
	"github.com/fyrsmithlabs/advisord/internal/patterns"
)

// Synthesizer weighs every observation into a Decision.
type Synthesizer struct {
	logger *logging.Logger
	now    func() time.Time
}

// NewSynthesizer creates a decision synthesizer.
func NewSynthesizer(logger *logging.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{
		logger: logger.Named("strategy"),
		now:    time.Now,
	}
}

// Decide combines the observations, the history summary, and the platform
// into one decision. Absent or degraded observations are simply skipped;
// they reduce confidence, never cause a failure.
func (s *Synthesizer) Decide(ctx context.Context, observations map[string]agent.Result, summary patterns.Summary, platform agent.Platform) Decision {
	var advice, warnings []string
	score := 50

	vision, visionRan := analyzedObservation(observations, "vision")
	if visionRan {
		switch vision.String("risk") {
		case "High":
			warnings = append(warnings, "High visual risk")
			advice = append(advice, firstN(vision.Strings("fixes"), 2)...)
			score -= 20
		case "Medium":
			warnings = append(warnings, "Some visual improvements possible")
			advice = append(advice, firstN(vision.Strings("fixes"), 1)...)
			score -= 10
		default:
			score += 10
		}
	}

	content, contentRan := analyzedObservation(observations, "content")
	if contentRan {
		score = (score + content.Int("score")) / 2

		if issues := content.Strings("issues"); len(issues) > 0 {
			warnings = append(warnings, firstN(issues, 2)...)
			advice = append(advice, firstN(content.Strings("suggestions"), 2)...)
		}

		switch content.String("hook_strength") {
		case "Strong":
			score += 5
		case "Weak":
			score -= 5
		}
	}

	if summary.HasData {
		switch summary.Trend {
		case "increasing":
			score += 5
			advice = append(advice, "Your recent growth suggests this content style works!")
		case "decreasing":
			advice = append(advice, "Consider trying a different approach based on recent trends")
		}
		advice = append(advice, firstN(summary.Insights, 1)...)
	} else {
		advice = append(advice, "I'm learning your patterns. Keep posting!")
	}

	advice = append(advice, platformAdvice(platform, content, contentRan)...)

	score = clamp(score, 0, 100)
	confidence := calculateConfidence(visionRan, contentRan, summary)
	verdict := determineVerdict(score, len(warnings))
	why := explain(score, vision, visionRan, content, contentRan, summary)
	advice = dedupe(advice, 5)

	s.logger.Debug(ctx, "decision synthesized",
		zap.Int("score", score),
		zap.String("verdict", verdict),
		zap.String("confidence", string(confidence)),
	)

	return Decision{
		Confidence: confidence,
		Score:      score,
		Verdict:    verdict,
		Advice:     advice,
		Warnings:   warnings,
		Why:        why,
		CreatedAt:  s.now().UTC(),
	}
}

func analyzedObservation(observations map[string]agent.Result, name string) (agent.Result, bool) {
	res, ok := observations[name]
	if !ok || !res.IsAnalyzed() {
		return agent.Result{}, false
	}
	return res, true
}

func calculateConfidence(visionRan, contentRan bool, summary patterns.Summary) Confidence {
	points := 0
	if visionRan {
		points += 2
	}
	if contentRan {
		points += 2
	}
	if summary.HasData {
		points += 2
		if summary.Trend != "" {
			points++
		}
	}

	switch {
	case points >= 5:
		return ConfidenceHigh
	case points >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func determineVerdict(score, warningCount int) string {
	switch {
	case score >= 70 && warningCount == 0:
		return VerdictPost
	case score >= 50 || warningCount <= 1:
		return VerdictTweaks
	case score >= 30:
		return VerdictFix
	default:
		return VerdictReconsider
	}
}

func platformAdvice(platform agent.Platform, content agent.Result, contentRan bool) []string {
	if !contentRan {
		return nil
	}
	details := content.Map("details")

	var advice []string
	switch platform {
	case agent.PlatformInstagram:
		hashtags := intFrom(details, "hashtag_count")
		if hashtags < 3 {
			advice = append(advice, "Add 5-10 relevant hashtags for Instagram discovery")
		}
		if hashtags > 15 {
			advice = append(advice, "Reduce hashtags to 10-15 for clean Instagram posting")
		}
	case agent.PlatformTwitter:
		if intFrom(details, "char_count") > 250 {
			advice = append(advice, "Consider shortening for Twitter's fast-scroll format")
		}
	case agent.PlatformLinkedIn:
		if !content.Bool("has_cta") {
			advice = append(advice, "LinkedIn posts with clear CTAs get 2x more engagement")
		}
	}
	return advice
}

func explain(score int, vision agent.Result, visionRan bool, content agent.Result, contentRan bool, summary patterns.Summary) string {
	var reasons []string

	if visionRan {
		reasons = append(reasons, fmt.Sprintf("Visual risk: %s", vision.String("risk")))
	}
	if contentRan {
		reasons = append(reasons, fmt.Sprintf("Hook strength: %s", content.String("hook_strength")))
	}
	if summary.HasData {
		trend := summary.Trend
		if trend == "" {
			trend = "stable"
		}
		reasons = append(reasons, fmt.Sprintf("Your trend: %s", trend))
	} else {
		reasons = append(reasons, "Limited history data")
	}

	return fmt.Sprintf("Score %d/100. Based on: %s.", score, strings.Join(reasons, ", "))
}

// dedupe keeps the first occurrence of each entry and caps the result.
func dedupe(entries []string, limit int) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func intFrom(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WithClock overrides the timestamp source. Tests only.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}
