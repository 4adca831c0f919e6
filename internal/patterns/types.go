// Package patterns detects recurring performance patterns in a creator's
// content history. Every detector is a pure function of the input window:
// identical history produces identical patterns, explanations included.
package patterns

// PatternType classifies what a detector found.
type PatternType string

const (
	PatternContentType PatternType = "content_type"
	PatternPostingTime PatternType = "posting_time"
	PatternPostingDay  PatternType = "posting_day"
	PatternCaption     PatternType = "caption_structure"
	PatternVelocity    PatternType = "engagement_velocity"
	PatternPlatform    PatternType = "platform_performance"
)

// Pattern is one detected performance pattern.
type Pattern struct {
	Type PatternType `json:"type"`

	// Scope is the platform the pattern applies to, or "all".
	Scope string `json:"scope"`

	// Multiplier is group performance relative to the user's overall
	// average, rounded to 2 decimals.
	Multiplier float64 `json:"multiplier"`

	// Confidence in [0,1], derived from sample size.
	Confidence float64 `json:"confidence"`

	SampleSize  int    `json:"sample_size"`
	Explanation string `json:"explanation"`
}

// TrendReport describes the engagement trajectory over the window.
type TrendReport struct {
	// Direction is "increasing", "decreasing", or "stable".
	Direction string `json:"direction"`

	// ChangePercent compares the second half of the window to the first,
	// rounded to 1 decimal. Zero when fewer than 7 daily values exist.
	ChangePercent float64 `json:"change_percent"`

	PeriodDays        int     `json:"period_days"`
	AverageEngagement float64 `json:"average_engagement"`
	PeakDay           string  `json:"peak_day,omitempty"`
	Insight           string  `json:"insight"`
}

// ClusterStats summarizes one performance cluster.
type ClusterStats struct {
	Count            int     `json:"count"`
	DominantPlatform string  `json:"dominant_platform,omitempty"`
	AvgContentLength int     `json:"avg_content_length"`
	AvgEngagement    float64 `json:"avg_engagement"`
}

// ClusterReport groups the window into high, average, and low performers
// relative to mean plus or minus one standard deviation.
type ClusterReport struct {
	High          ClusterStats `json:"high"`
	Average       ClusterStats `json:"average"`
	Low           ClusterStats `json:"low"`
	TotalAnalyzed int          `json:"total_analyzed"`
	Insight       string       `json:"insight"`
}

// Cause is one probable explanation for the current engagement level.
type Cause struct {
	Cause      string  `json:"cause"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
	Fix        string  `json:"fix"`
}

// Diagnosis ranks probable causes, strongest first.
type Diagnosis struct {
	Causes         []Cause `json:"causes"`
	Recommendation string  `json:"recommendation"`
}

// Primary returns the strongest cause, or nil.
func (d Diagnosis) Primary() *Cause {
	if len(d.Causes) == 0 {
		return nil
	}
	return &d.Causes[0]
}

// Summary is the UNDERSTAND-phase product handed to the synthesizer.
type Summary struct {
	// HasData is false when the user has no content history; every other
	// field is then zero-valued and safe to read.
	HasData bool `json:"has_data"`

	Trend         string    `json:"trend"`
	ChangePercent float64   `json:"change_percent"`
	Insights      []string  `json:"insights,omitempty"`
	Patterns      []Pattern `json:"patterns,omitempty"`
	Diagnosis     Diagnosis `json:"diagnosis"`
}
