package capability

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// Caption length windows that tend to perform well per platform.
var optimalLengths = map[agent.Platform][2]int{
	agent.PlatformInstagram: {100, 300},
	agent.PlatformTwitter:   {80, 200},
	agent.PlatformLinkedIn:  {150, 400},
	agent.PlatformYouTube:   {100, 200},
}

var defaultLengthWindow = [2]int{100, 300}

// Emojis that correlate with higher engagement when they appear in the hook.
var powerEmojis = []string{"🔥", "🚀", "💡", "✨", "👀", "🎯", "💯", "⚡", "🙌", "❤️"}

var powerWords = []string{"secret", "mistake", "truth", "never", "always", "stop"}

var ctaPhrases = []string{
	"comment", "share", "like", "follow", "subscribe",
	"save this", "link in bio", "click", "tag a friend",
	"let me know", "drop a", "tell me", "dm me",
	"check out", "grab", "get your", "join",
}

var (
	hashtagRe       = regexp.MustCompile(`#\w+`)
	leadingNumberRe = regexp.MustCompile(`^\d+\s`)
	emojiRe         = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]`)
)

// Content analyzes caption text for engagement potential: hook strength,
// length against platform norms, call-to-action presence, and structure.
type Content struct {
	logger *logging.Logger
}

// NewContent creates the caption analysis capability.
func NewContent(logger *logging.Logger) *Content {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Content{logger: logger.Named("content")}
}

func (c *Content) Name() string { return "content" }

// Invoke scores the request's text. Requests without text are skipped,
// never failed.
func (c *Content) Invoke(ctx context.Context, req *agent.Request) (agent.Result, error) {
	if !req.HasText() {
		return agent.Skipped("no text provided"), nil
	}

	text := req.Text
	platform := req.Platform
	if platform == agent.PlatformUnknown {
		platform = agent.PlatformInstagram
	}

	hook := analyzeHook(text)
	length := analyzeLength(text, platform)
	hasCTA := detectCTA(text)
	structure := analyzeStructure(text)

	var issues, suggestions []string

	if hook.Strength == "Weak" {
		issues = append(issues, "Weak hook in first line")
		suggestions = append(suggestions, "Start with a question, bold statement, or surprising fact")
	}

	switch length.Assessment {
	case "too_short":
		issues = append(issues, "Caption too short")
		suggestions = append(suggestions, fmt.Sprintf("Add more context (%d-%d chars ideal)", length.OptimalMin, length.OptimalMax))
	case "too_long":
		issues = append(issues, "Caption too long for platform")
		suggestions = append(suggestions, "Trim to essential points or use line breaks")
	}

	if !hasCTA {
		issues = append(issues, "No call-to-action")
		suggestions = append(suggestions, "Add CTA: 'Comment below', 'Save this', 'Share with someone'")
	}

	if !structure.HasQuestion {
		suggestions = append(suggestions, "Add a question to drive comments")
	}
	if structure.EmojiCount == 0 && (platform == agent.PlatformInstagram || platform == agent.PlatformTwitter) {
		suggestions = append(suggestions, "Add emojis to increase visibility")
	}

	if len(suggestions) > 4 {
		suggestions = suggestions[:4]
	}

	score := scoreContent(hook, length, hasCTA, structure)

	c.logger.Debug(ctx, "caption analyzed",
		zap.Int("score", score),
		zap.String("hook", hook.Strength),
		zap.String("length", length.Assessment),
	)

	return agent.Analyzed(map[string]any{
		"score":             score,
		"hook_strength":     hook.Strength,
		"length_assessment": length.Assessment,
		"has_cta":           hasCTA,
		"has_question":      structure.HasQuestion,
		"issues":            issues,
		"suggestions":       suggestions,
		"details": map[string]any{
			"char_count":    len([]rune(text)),
			"word_count":    len(strings.Fields(text)),
			"hashtag_count": structure.HashtagCount,
			"emoji_count":   structure.EmojiCount,
		},
	}, ""), nil
}

type hookAnalysis struct {
	Strength string
	Reasons  []string
}

// analyzeHook inspects the first 120 characters, where scrolling readers
// decide whether to keep reading.
func analyzeHook(text string) hookAnalysis {
	runes := []rune(text)
	if len(runes) > 120 {
		runes = runes[:120]
	}
	hook := string(runes)
	hookLower := strings.ToLower(hook)

	out := hookAnalysis{Strength: "Weak"}

	if strings.Contains(hook, "?") {
		out.Strength = "Strong"
		out.Reasons = append(out.Reasons, "contains question")
	}

	for _, word := range powerWords {
		if strings.Contains(hookLower, word) {
			out.Strength = "Strong"
			out.Reasons = append(out.Reasons, "uses power word")
			break
		}
	}

	if leadingNumberRe.MatchString(hook) {
		if out.Strength != "Strong" {
			out.Strength = "Medium"
		}
		out.Reasons = append(out.Reasons, "starts with number")
	}

	for _, emoji := range powerEmojis {
		if strings.Contains(hook, emoji) {
			if out.Strength != "Strong" {
				out.Strength = "Medium"
			}
			out.Reasons = append(out.Reasons, "uses engaging emoji")
			break
		}
	}

	return out
}

type lengthAnalysis struct {
	Length     int
	OptimalMin int
	OptimalMax int
	Assessment string
}

func analyzeLength(text string, platform agent.Platform) lengthAnalysis {
	window, ok := optimalLengths[platform]
	if !ok {
		window = defaultLengthWindow
	}

	out := lengthAnalysis{
		Length:     len([]rune(text)),
		OptimalMin: window[0],
		OptimalMax: window[1],
	}

	switch {
	case out.Length < out.OptimalMin:
		out.Assessment = "too_short"
	case out.Length > out.OptimalMax:
		out.Assessment = "too_long"
	default:
		out.Assessment = "optimal"
	}
	return out
}

func detectCTA(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range ctaPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

type structureAnalysis struct {
	HashtagCount int
	EmojiCount   int
	HasQuestion  bool
}

func analyzeStructure(text string) structureAnalysis {
	return structureAnalysis{
		HashtagCount: len(hashtagRe.FindAllString(text, -1)),
		EmojiCount:   len(emojiRe.FindAllString(text, -1)),
		HasQuestion:  strings.Contains(text, "?"),
	}
}

func scoreContent(hook hookAnalysis, length lengthAnalysis, hasCTA bool, structure structureAnalysis) int {
	score := 50

	switch hook.Strength {
	case "Strong":
		score += 20
	case "Medium":
		score += 10
	}

	switch length.Assessment {
	case "optimal":
		score += 15
	case "too_long":
		score += 5
	}

	if hasCTA {
		score += 10
	}
	if structure.HasQuestion {
		score += 5
	}
	if structure.EmojiCount > 0 {
		score += 5
	}
	if structure.HashtagCount >= 3 && structure.HashtagCount <= 10 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}
