package patterns

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/history"
	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// Confidence normalizers: a detector reaches full confidence once its
// sample count meets the divisor.
const (
	normContentType = 10
	normPostingTime = 20
	normPostingDay  = 15
	normCaption     = 8
	normVelocity    = 10
	normPlatform    = 15
)

var emojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]`)

// Engine runs the pattern detectors over a content window.
type Engine struct {
	logger *logging.Logger
}

// NewEngine creates a pattern engine.
func NewEngine(logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{logger: logger.Named("patterns")}
}

// Summarize runs every detector plus trend, clustering, and diagnosis.
// Empty input yields {HasData: false}, never an error.
func (e *Engine) Summarize(ctx context.Context, items []history.ContentItem) Summary {
	if len(items) == 0 {
		return Summary{}
	}

	trend := Trend(items)
	clusters := Clusters(items)
	detected := Detect(items)
	diagnosis := Diagnose(trend, clusters, detected)

	insights := []string{trend.Insight}
	if clusters.Insight != "" {
		insights = append(insights, clusters.Insight)
	}
	for i, p := range detected {
		if i >= 2 {
			break
		}
		insights = append(insights, p.Explanation)
	}

	e.logger.Debug(ctx, "history summarized",
		zap.Int("items", len(items)),
		zap.Int("patterns", len(detected)),
		zap.String("trend", trend.Direction),
	)

	return Summary{
		HasData:       true,
		Trend:         trend.Direction,
		ChangePercent: trend.ChangePercent,
		Insights:      insights,
		Patterns:      detected,
		Diagnosis:     diagnosis,
	}
}

// Detect runs all pattern detectors in a fixed order.
func Detect(items []history.ContentItem) []Pattern {
	var out []Pattern
	out = append(out, detectContentType(items)...)
	out = append(out, detectPostingTime(items)...)
	out = append(out, detectPostingDay(items)...)
	out = append(out, detectCaption(items)...)
	out = append(out, detectVelocity(items)...)
	out = append(out, detectPlatform(items)...)
	return out
}

// Trend buckets engagement by calendar day and compares the first half of
// the window against the second. A direction needs at least 7 daily values.
func Trend(items []history.ContentItem) TrendReport {
	daily := make(map[string][]float64)
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		day := item.CreatedAt.UTC().Format("2006-01-02")
		daily[day] = append(daily[day], float64(item.Engagement()))
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	values := make([]float64, 0, len(days))
	peakDay := ""
	peak := math.Inf(-1)
	for _, day := range days {
		avg := mean(daily[day])
		values = append(values, avg)
		if avg > peak {
			peak = avg
			peakDay = day
		}
	}

	report := TrendReport{
		Direction:  "stable",
		PeriodDays: len(days),
		PeakDay:    peakDay,
	}
	if len(values) > 0 {
		report.AverageEngagement = round1(mean(values))
	}

	if len(values) >= 7 {
		firstHalf := mean(values[:len(values)/2])
		secondHalf := mean(values[len(values)/2:])
		if firstHalf > 0 {
			change := (secondHalf - firstHalf) / firstHalf * 100
			report.ChangePercent = round1(change)
			if change > 10 {
				report.Direction = "increasing"
			} else if change < -10 {
				report.Direction = "decreasing"
			}
		}
	}

	switch report.Direction {
	case "increasing":
		report.Insight = fmt.Sprintf("Engagement is up %.0f%% over this period. Keep doing what's working!", math.Abs(report.ChangePercent))
	case "decreasing":
		report.Insight = fmt.Sprintf("Engagement has dropped %.0f%%. Let's diagnose why.", math.Abs(report.ChangePercent))
	default:
		report.Insight = "Engagement is stable. Consider experimenting with new content types."
	}
	return report
}

// Clusters splits items into high, average, and low performers around the
// mean. With a single sample the standard deviation is defined as 0.3 of
// the mean so the item lands in the average cluster.
func Clusters(items []history.ContentItem) ClusterReport {
	report := ClusterReport{TotalAnalyzed: len(items)}
	if len(items) == 0 {
		return report
	}

	engagements := make([]float64, len(items))
	for i, item := range items {
		engagements[i] = float64(item.Engagement())
	}

	avg := mean(engagements)
	sd := stdev(engagements)
	if len(engagements) < 2 {
		sd = avg * 0.3
	}

	var high, average, low []history.ContentItem
	for _, item := range items {
		eng := float64(item.Engagement())
		switch {
		case eng > avg+sd:
			high = append(high, item)
		case eng < avg-sd:
			low = append(low, item)
		default:
			average = append(average, item)
		}
	}

	report.High = clusterStats(high)
	report.Average = clusterStats(average)
	report.Low = clusterStats(low)

	if report.High.DominantPlatform != "" {
		report.Insight = fmt.Sprintf("Your top content is mostly on %s with avg %.1f engagement.",
			titleCase(report.High.DominantPlatform), report.High.AvgEngagement)
	} else {
		report.Insight = "Not enough data to identify clear performance clusters yet."
	}
	return report
}

func clusterStats(items []history.ContentItem) ClusterStats {
	stats := ClusterStats{Count: len(items)}
	if len(items) == 0 {
		return stats
	}

	platforms := make(map[string]int)
	var lengths, engagements []float64
	for _, item := range items {
		platforms[item.Platform]++
		lengths = append(lengths, float64(len([]rune(item.Text))))
		engagements = append(engagements, float64(item.Engagement()))
	}

	// Ties resolve to the lexicographically first platform.
	names := sortedKeys(platforms)
	best := names[0]
	for _, name := range names[1:] {
		if platforms[name] > platforms[best] {
			best = name
		}
	}

	stats.DominantPlatform = best
	stats.AvgContentLength = int(math.Round(mean(lengths)))
	stats.AvgEngagement = round1(mean(engagements))
	return stats
}

func detectContentType(items []history.ContentItem) []Pattern {
	groups := make(map[string][]float64)
	for _, item := range items {
		kind := "text_only"
		if item.HasImage {
			kind = "with_visual"
			if item.FaceDetected {
				kind = "with_face"
			}
		}
		groups[kind] = append(groups[kind], float64(item.Engagement()))
	}

	overall := overallMean(items)
	descriptions := map[string]string{
		"with_face":   "Content with faces visible",
		"with_visual": "Posts with images/visuals",
		"text_only":   "Text-only posts",
	}

	var out []Pattern
	for _, kind := range sortedKeys(groups) {
		engagements := groups[kind]
		if len(engagements) < 2 {
			continue
		}
		multiplier := round2(mean(engagements) / math.Max(overall, 1))
		if multiplier <= 1.2 && multiplier >= 0.8 {
			continue
		}

		explanation := fmt.Sprintf("%s perform %gx better than your average content", descriptions[kind], multiplier)
		if multiplier <= 1 {
			explanation = fmt.Sprintf("%s underperform at %gx compared to average", descriptions[kind], multiplier)
		}

		out = append(out, Pattern{
			Type:        PatternContentType,
			Scope:       "all",
			Multiplier:  multiplier,
			Confidence:  confidence(len(engagements), normContentType),
			SampleSize:  len(engagements),
			Explanation: explanation,
		})
	}
	return out
}

func detectPostingTime(items []history.ContentItem) []Pattern {
	hours := make(map[int][]float64)
	total := 0
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		hour := item.CreatedAt.UTC().Hour()
		hours[hour] = append(hours[hour], float64(item.Engagement()))
		total++
	}

	overall := overallMean(items)

	bestHour, bestAvg := -1, 0.0
	for hour := 0; hour < 24; hour++ {
		engagements, ok := hours[hour]
		if !ok || len(engagements) < 2 {
			continue
		}
		if avg := mean(engagements); avg > bestAvg {
			bestHour, bestAvg = hour, avg
		}
	}
	if bestHour < 0 {
		return nil
	}

	multiplier := round2(bestAvg / math.Max(overall, 1))
	if multiplier <= 1.2 {
		return nil
	}

	return []Pattern{{
		Type:        PatternPostingTime,
		Scope:       "all",
		Multiplier:  multiplier,
		Confidence:  confidence(total, normPostingTime),
		SampleSize:  len(items),
		Explanation: fmt.Sprintf("Posts between %d:00-%d:00 perform %gx better", bestHour, bestHour+1, multiplier),
	}}
}

func detectPostingDay(items []history.ContentItem) []Pattern {
	days := make(map[time.Weekday][]float64)
	total := 0
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		day := item.CreatedAt.UTC().Weekday()
		days[day] = append(days[day], float64(item.Engagement()))
		total++
	}

	overall := overallMean(items)

	bestDay, bestAvg := time.Weekday(-1), 0.0
	for day := time.Sunday; day <= time.Saturday; day++ {
		engagements, ok := days[day]
		if !ok || len(engagements) < 2 {
			continue
		}
		if avg := mean(engagements); avg > bestAvg {
			bestDay, bestAvg = day, avg
		}
	}
	if bestDay < 0 {
		return nil
	}

	multiplier := round2(bestAvg / math.Max(overall, 1))
	if multiplier <= 1.2 {
		return nil
	}

	return []Pattern{{
		Type:        PatternPostingDay,
		Scope:       "all",
		Multiplier:  multiplier,
		Confidence:  confidence(total, normPostingDay),
		SampleSize:  len(items),
		Explanation: fmt.Sprintf("%ss perform %gx better than average", bestDay, multiplier),
	}}
}

func detectCaption(items []history.ContentItem) []Pattern {
	groups := make(map[string][]float64)
	for _, item := range items {
		eng := float64(item.Engagement())

		length := len([]rune(item.Text))
		switch {
		case length <= 100:
			groups["length_short"] = append(groups["length_short"], eng)
		case length <= 280:
			groups["length_medium"] = append(groups["length_medium"], eng)
		default:
			groups["length_long"] = append(groups["length_long"], eng)
		}

		if emojiPattern.MatchString(item.Text) {
			groups["with_emoji"] = append(groups["with_emoji"], eng)
		} else {
			groups["no_emoji"] = append(groups["no_emoji"], eng)
		}
		if strings.Contains(item.Text, "?") {
			groups["with_question"] = append(groups["with_question"], eng)
		}
	}

	overall := overallMean(items)
	descriptions := map[string]string{
		"length_short":  "Short captions (under 100 chars)",
		"length_medium": "Medium captions (100-280 chars)",
		"length_long":   "Longer captions (280+ chars)",
		"with_emoji":    "Posts with emojis",
		"no_emoji":      "Posts without emojis",
		"with_question": "Posts asking questions",
	}

	var out []Pattern
	for _, name := range sortedKeys(groups) {
		engagements := groups[name]
		if len(engagements) < 2 {
			continue
		}
		multiplier := round2(mean(engagements) / math.Max(overall, 1))
		if multiplier <= 1.3 && multiplier >= 0.7 {
			continue
		}

		explanation := fmt.Sprintf("%s drive %gx more engagement", descriptions[name], multiplier)
		if multiplier <= 1 {
			explanation = fmt.Sprintf("%s get %gx engagement (below average)", descriptions[name], multiplier)
		}

		out = append(out, Pattern{
			Type:        PatternCaption,
			Scope:       "all",
			Multiplier:  multiplier,
			Confidence:  confidence(len(engagements), normCaption),
			SampleSize:  len(engagements),
			Explanation: explanation,
		})
	}
	return out
}

func detectVelocity(items []history.ContentItem) []Pattern {
	if len(items) < 5 {
		return nil
	}

	engagements := make([]float64, len(items))
	for i, item := range items {
		engagements[i] = float64(item.Engagement())
	}

	avg := mean(engagements)
	sd := stdev(engagements)
	if sd <= avg*0.5 {
		return nil
	}

	return []Pattern{{
		Type:        PatternVelocity,
		Scope:       "all",
		Multiplier:  round2((avg + sd) / math.Max(avg, 1)),
		Confidence:  confidence(len(engagements), normVelocity),
		SampleSize:  len(engagements),
		Explanation: "Your top-performing posts get significantly higher engagement than average - focus on replicating those patterns",
	}}
}

func detectPlatform(items []history.ContentItem) []Pattern {
	byPlatform := make(map[string][]float64)
	for _, item := range items {
		byPlatform[item.Platform] = append(byPlatform[item.Platform], float64(item.Engagement()))
	}
	if len(byPlatform) < 2 {
		return nil
	}

	overall := overallMean(items)

	bestPlatform, bestAvg := "", 0.0
	for _, platform := range sortedKeys(byPlatform) {
		engagements := byPlatform[platform]
		if len(engagements) < 2 {
			continue
		}
		if avg := mean(engagements); avg > bestAvg {
			bestPlatform, bestAvg = platform, avg
		}
	}
	if bestPlatform == "" {
		return nil
	}

	multiplier := round2(bestAvg / math.Max(overall, 1))
	return []Pattern{{
		Type:        PatternPlatform,
		Scope:       bestPlatform,
		Multiplier:  multiplier,
		Confidence:  confidence(len(items), normPlatform),
		SampleSize:  len(items),
		Explanation: fmt.Sprintf("%s is your best-performing platform with %gx average engagement", titleCase(bestPlatform), multiplier),
	}}
}

func overallMean(items []history.ContentItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range items {
		sum += float64(item.Engagement())
	}
	return sum / float64(len(items))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation; zero for fewer than 2 values.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func confidence(samples, normalizer int) float64 {
	c := float64(samples) / float64(normalizer)
	if c > 1 {
		c = 1
	}
	return round2(c)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
