// Package analytics derives the distribution, top category and suggestions
// from final bin membership.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/jonathan/career-analyzer/internal/types"
)

// MaxSuggestions caps the suggestion list.
const MaxSuggestions = 5

// Thresholds on a bin's percentage of categorized bullets.
const (
	UnderrepresentedBelow = 15.0
	EmphasisAbove         = 40.0
)

// BalancedMessage is appended when every bin holds at least one bullet.
const BalancedMessage = "Well-balanced profile across all categories!"

// Calculate derives analytics from bins in their fixed iteration order.
// The uncategorized pool is never part of the input; only categorized bullets count.
func Calculate(bins []types.Bin) types.Analytics {
	total := 0
	for _, b := range bins {
		total += len(b.Bullets)
	}

	distribution := make([]types.Distribution, len(bins))
	for i, b := range bins {
		distribution[i] = types.Distribution{
			BinID:      b.ID,
			Count:      len(b.Bullets),
			Percentage: Percentage(len(b.Bullets), total),
		}
	}

	return types.Analytics{
		Distribution: distribution,
		TopCategory:  topCategory(bins),
		Suggestions:  suggestions(distribution, bins),
	}
}

// Percentage returns count/total as a percentage rounded half-up to one decimal, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Floor(float64(count)/float64(total)*1000+0.5) / 10
}

// topCategory returns the label of the first bin reaching the maximum count.
func topCategory(bins []types.Bin) string {
	if len(bins) == 0 {
		return ""
	}
	top := bins[0]
	for _, b := range bins[1:] {
		if len(b.Bullets) > len(top.Bullets) {
			top = b
		}
	}
	return top.Label
}

func suggestions(distribution []types.Distribution, bins []types.Bin) []string {
	out := []string{}
	filled := 0

	for i, d := range distribution {
		label := bins[i].Label
		switch {
		case d.Count == 0:
			out = append(out, fmt.Sprintf("No bullets in '%s' - reflect on experiences that fit this category", label))
		case d.Percentage < UnderrepresentedBelow:
			out = append(out, fmt.Sprintf("Consider adding more bullets to '%s' to provide a fuller picture", label))
		case d.Percentage > EmphasisAbove:
			out = append(out, fmt.Sprintf("Strong emphasis on '%s' - this is a key part of your profile!", label))
		}
		if d.Count > 0 {
			filled++
		}
	}

	if len(bins) > 0 && filled == len(bins) {
		out = append(out, BalancedMessage)
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// NewResult snapshots bins into an immutable AnalysisResult.
func NewResult(bins []types.Bin, now time.Time, onboarding *types.OnboardingData) *types.AnalysisResult {
	snapshot := types.CloneBins(bins)
	return &types.AnalysisResult{
		Bins:           snapshot,
		Analytics:      Calculate(snapshot),
		Timestamp:      now.UTC(),
		OnboardingData: onboarding.Clone(),
	}
}
