package patterns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/advisord/internal/history"
)

var fixtureBase = time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)

func item(platform, text string, engagement int, createdAt time.Time) history.ContentItem {
	return history.ContentItem{
		ID:        fmt.Sprintf("%s-%d-%d", platform, engagement, createdAt.Unix()),
		UserID:    "u1",
		Platform:  platform,
		Text:      text,
		CreatedAt: createdAt,
		Likes:     engagement,
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	t.Parallel()

	summary := NewEngine(nil).Summarize(context.Background(), nil)
	assert.False(t, summary.HasData)
	assert.Empty(t, summary.Patterns)
	assert.Empty(t, summary.Trend)
}

func TestTrend_IncreasingAcrossHalves(t *testing.T) {
	t.Parallel()

	var items []history.ContentItem
	for day := 0; day < 8; day++ {
		engagement := 10
		if day >= 4 {
			engagement = 100
		}
		items = append(items, item("twitter", "post", engagement, fixtureBase.AddDate(0, 0, day)))
	}

	trend := Trend(items)
	assert.Equal(t, "increasing", trend.Direction)
	assert.Equal(t, 900.0, trend.ChangePercent)
	assert.Equal(t, 8, trend.PeriodDays)
	assert.Contains(t, trend.Insight, "up 900%")
}

func TestTrend_TooFewDaysIsStable(t *testing.T) {
	t.Parallel()

	var items []history.ContentItem
	for day := 0; day < 6; day++ {
		items = append(items, item("twitter", "post", day*100, fixtureBase.AddDate(0, 0, day)))
	}

	trend := Trend(items)
	assert.Equal(t, "stable", trend.Direction)
	assert.Zero(t, trend.ChangePercent)
}

func TestClusters_SplitsAroundMean(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "viral thread", 300, fixtureBase),
		item("instagram", "ok post", 100, fixtureBase),
		item("instagram", "ok post 2", 110, fixtureBase),
		item("instagram", "ok post 3", 90, fixtureBase),
		item("linkedin", "flop", 1, fixtureBase),
	}

	report := Clusters(items)
	assert.Equal(t, 5, report.TotalAnalyzed)
	assert.Equal(t, 1, report.High.Count)
	assert.Equal(t, "twitter", report.High.DominantPlatform)
	assert.Equal(t, 1, report.Low.Count)
	assert.Equal(t, 3, report.Average.Count)
	assert.Contains(t, report.Insight, "Twitter")
}

func TestClusters_SingleItemLandsInAverage(t *testing.T) {
	t.Parallel()

	report := Clusters([]history.ContentItem{item("twitter", "only one", 50, fixtureBase)})
	assert.Equal(t, 1, report.Average.Count)
	assert.Zero(t, report.High.Count)
	assert.Zero(t, report.Low.Count)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	face := item("instagram", "with my face", 100, time.Time{})
	face.HasImage = true
	face.FaceDetected = true
	face2 := face
	face2.Likes = 120

	items := []history.ContentItem{
		face, face2,
		item("instagram", "plain words", 10, time.Time{}),
		item("instagram", "more words", 10, time.Time{}),
	}

	detected := detectContentType(items)
	require.Len(t, detected, 2)

	// Sorted group keys: text_only before with_face.
	assert.Equal(t, 0.17, detected[0].Multiplier)
	assert.Contains(t, detected[0].Explanation, "Text-only posts underperform")
	assert.Equal(t, 1.83, detected[1].Multiplier)
	assert.Contains(t, detected[1].Explanation, "faces visible")
	assert.Equal(t, 0.2, detected[1].Confidence)
	assert.Equal(t, 2, detected[1].SampleSize)
}

func TestDetectPostingTime(t *testing.T) {
	t.Parallel()

	evening := time.Date(2026, 3, 2, 20, 30, 0, 0, time.UTC)
	morning := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	items := []history.ContentItem{
		item("twitter", "a", 100, evening),
		item("twitter", "b", 100, evening.Add(10*time.Minute)),
		item("twitter", "c", 10, morning),
		item("twitter", "d", 10, morning.Add(10*time.Minute)),
	}

	detected := detectPostingTime(items)
	require.Len(t, detected, 1)
	assert.Equal(t, PatternPostingTime, detected[0].Type)
	assert.Equal(t, 1.82, detected[0].Multiplier)
	assert.Contains(t, detected[0].Explanation, "20:00-21:00")
}

func TestDetectPostingTime_NoGroupWithTwoSamples(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "a", 100, time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)),
		item("twitter", "b", 10, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
	}
	assert.Empty(t, detectPostingTime(items))
}

func TestDetectCaption_QuestionPosts(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "What do you think?", 100, time.Time{}),
		item("twitter", "Agree or disagree?", 120, time.Time{}),
		item("twitter", "statement one", 10, time.Time{}),
		item("twitter", "statement two", 10, time.Time{}),
	}

	detected := detectCaption(items)

	var question *Pattern
	for i := range detected {
		if detected[i].Explanation == "Posts asking questions drive 1.83x more engagement" {
			question = &detected[i]
		}
	}
	require.NotNil(t, question, "expected a with_question pattern, got %+v", detected)
	assert.Equal(t, 2, question.SampleSize)
	assert.Equal(t, 0.25, question.Confidence)
}

func TestDetectVelocity(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "a", 0, time.Time{}),
		item("twitter", "b", 0, time.Time{}),
		item("twitter", "c", 0, time.Time{}),
		item("twitter", "d", 0, time.Time{}),
		item("twitter", "e", 500, time.Time{}),
	}

	detected := detectVelocity(items)
	require.Len(t, detected, 1)
	assert.Equal(t, PatternVelocity, detected[0].Type)
	assert.InDelta(t, 3.24, detected[0].Multiplier, 0.01)
	assert.Equal(t, 0.5, detected[0].Confidence)
}

func TestDetectVelocity_StableEngagementIsNoPattern(t *testing.T) {
	t.Parallel()

	var items []history.ContentItem
	for i := 0; i < 6; i++ {
		items = append(items, item("twitter", "steady", 100, time.Time{}))
	}
	assert.Empty(t, detectVelocity(items))
}

func TestDetectPlatform(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "a", 100, time.Time{}),
		item("twitter", "b", 100, time.Time{}),
		item("instagram", "c", 20, time.Time{}),
		item("instagram", "d", 20, time.Time{}),
	}

	detected := detectPlatform(items)
	require.Len(t, detected, 1)
	assert.Equal(t, "twitter", detected[0].Scope)
	assert.Equal(t, 1.67, detected[0].Multiplier)
	assert.Contains(t, detected[0].Explanation, "Twitter is your best-performing platform")
}

func TestDetectPlatform_SinglePlatformIsNoPattern(t *testing.T) {
	t.Parallel()

	items := []history.ContentItem{
		item("twitter", "a", 100, time.Time{}),
		item("twitter", "b", 10, time.Time{}),
	}
	assert.Empty(t, detectPlatform(items))
}

func TestSummarize_Idempotent(t *testing.T) {
	t.Parallel()

	var items []history.ContentItem
	for day := 0; day < 10; day++ {
		engagement := 20 + day*15
		text := "Another update about the build process #build"
		if day%2 == 0 {
			text = "What should I ship next? Comment below! 🔥"
		}
		platform := "twitter"
		if day%3 == 0 {
			platform = "instagram"
		}
		items = append(items, item(platform, text, engagement, fixtureBase.AddDate(0, 0, day)))
	}

	engine := NewEngine(nil)
	first := engine.Summarize(context.Background(), items)
	second := engine.Summarize(context.Background(), items)

	assert.Equal(t, first, second, "identical input must produce identical summaries")
	assert.True(t, first.HasData)
}

func TestDiagnose_RanksCausesByConfidence(t *testing.T) {
	t.Parallel()

	trend := TrendReport{Direction: "decreasing", ChangePercent: -32.5, PeriodDays: 14}
	clusters := ClusterReport{
		Low: ClusterStats{Count: 4, DominantPlatform: "instagram"},
	}
	detected := []Pattern{
		{Type: PatternPostingTime, Multiplier: 1.8, Confidence: 1.0, Explanation: "Posts between 20:00-21:00 perform 1.8x better"},
	}

	diagnosis := Diagnose(trend, clusters, detected)
	require.NotEmpty(t, diagnosis.Causes)

	// 0.5 + 1.0*0.3 = 0.8 ranks above the trend's 0.75.
	primary := diagnosis.Primary()
	require.NotNil(t, primary)
	assert.Equal(t, 0.8, primary.Confidence)
	assert.Equal(t, "Replicate this pattern in upcoming posts", primary.Fix)
	assert.Equal(t, primary.Fix, diagnosis.Recommendation)

	for i := 1; i < len(diagnosis.Causes); i++ {
		assert.GreaterOrEqual(t, diagnosis.Causes[i-1].Confidence, diagnosis.Causes[i].Confidence)
	}
}

func TestDiagnose_NoSignalsFallsBack(t *testing.T) {
	t.Parallel()

	diagnosis := Diagnose(TrendReport{Direction: "stable"}, ClusterReport{}, nil)
	assert.Nil(t, diagnosis.Primary())
	assert.Equal(t, "Keep posting to gather more data", diagnosis.Recommendation)
}
