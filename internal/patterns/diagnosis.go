package patterns

import (
	"fmt"
	"math"
	"sort"
)

// Diagnose ranks probable causes for the current engagement level from the
// trend, the clusters, and the detected patterns. It invents nothing: every
// cause cites evidence from the window it was computed over.
func Diagnose(trend TrendReport, clusters ClusterReport, detected []Pattern) Diagnosis {
	var causes []Cause

	if trend.Direction == "decreasing" {
		causes = append(causes, Cause{
			Cause:      "Declining posting consistency",
			Evidence:   fmt.Sprintf("Engagement dropped %.0f%% over %d days", math.Abs(trend.ChangePercent), trend.PeriodDays),
			Confidence: 0.75,
			Fix:        "Return to a consistent posting schedule",
		})
	}

	if clusters.Low.Count > 2 && clusters.Low.DominantPlatform != "" {
		platform := titleCase(clusters.Low.DominantPlatform)
		causes = append(causes, Cause{
			Cause:      fmt.Sprintf("Content underperforming on %s", platform),
			Evidence:   fmt.Sprintf("%d posts in the low-performance cluster", clusters.Low.Count),
			Confidence: 0.65,
			Fix:        fmt.Sprintf("Adapt content style for the %s audience", platform),
		})
	}

	// Strongest positive patterns point at what the creator is not leaning
	// into enough.
	strongest := make([]Pattern, 0, len(detected))
	for _, p := range detected {
		if p.Multiplier >= 1.5 {
			strongest = append(strongest, p)
		}
	}
	sort.SliceStable(strongest, func(i, j int) bool {
		return strongest[i].Multiplier > strongest[j].Multiplier
	})
	for i, p := range strongest {
		if i >= 2 {
			break
		}
		causes = append(causes, Cause{
			Cause:      "Best-performing format is underused",
			Evidence:   p.Explanation,
			Confidence: round2(0.5 + p.Confidence*0.3),
			Fix:        "Replicate this pattern in upcoming posts",
		})
	}

	sort.SliceStable(causes, func(i, j int) bool {
		return causes[i].Confidence > causes[j].Confidence
	})
	if len(causes) > 4 {
		causes = causes[:4]
	}

	diagnosis := Diagnosis{Causes: causes}
	if primary := diagnosis.Primary(); primary != nil {
		diagnosis.Recommendation = primary.Fix
	} else {
		diagnosis.Recommendation = "Keep posting to gather more data"
	}
	return diagnosis
}
