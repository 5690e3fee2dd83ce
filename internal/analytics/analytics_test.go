package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binsWithCounts builds the four catalog bins holding the given number of bullets each.
func binsWithCounts(counts ...int) []types.Bin {
	cfgs := catalog.Bins()
	bins := make([]types.Bin, len(cfgs))
	for i, cfg := range cfgs {
		bins[i] = types.NewBin(cfg)
		for j := 0; j < counts[i]; j++ {
			text := fmt.Sprintf("Bullet %d", j)
			bins[i].Bullets = append(bins[i].Bullets, types.BulletPoint{
				ID:         fmt.Sprintf("%s-%d", cfg.ID, j),
				Text:       text,
				Formatting: types.PlainFormatting(text),
			})
		}
	}
	return bins
}

func percentages(a types.Analytics) []float64 {
	out := make([]float64, len(a.Distribution))
	for i, d := range a.Distribution {
		out[i] = d.Percentage
	}
	return out
}

func TestCalculate_MixedScenario(t *testing.T) {
	a := Calculate(binsWithCounts(2, 5, 0, 3))

	want := []types.Distribution{
		{BinID: "interests", Count: 2, Percentage: 20.0},
		{BinID: "skillset", Count: 5, Percentage: 50.0},
		{BinID: "values", Count: 0, Percentage: 0.0},
		{BinID: "strengths", Count: 3, Percentage: 30.0},
	}
	if diff := cmp.Diff(want, a.Distribution); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Skill Set", a.TopCategory)

	wantSuggestions := []string{
		"Strong emphasis on 'Skill Set' - this is a key part of your profile!",
		"No bullets in 'Values' - reflect on experiences that fit this category",
	}
	if diff := cmp.Diff(wantSuggestions, a.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, a.Suggestions, BalancedMessage)
}

func TestCalculate_BalancedScenario(t *testing.T) {
	a := Calculate(binsWithCounts(1, 1, 1, 1))

	assert.Equal(t, []float64{25, 25, 25, 25}, percentages(a))
	assert.Equal(t, []string{BalancedMessage}, a.Suggestions)
	assert.Equal(t, "Interests", a.TopCategory)
}

func TestCalculate_EmptyBins(t *testing.T) {
	a := Calculate(binsWithCounts(0, 0, 0, 0))

	assert.Equal(t, []float64{0, 0, 0, 0}, percentages(a))
	assert.Equal(t, "Interests", a.TopCategory)
	require.Len(t, a.Suggestions, 4)
	for _, s := range a.Suggestions {
		assert.Contains(t, s, "No bullets in")
	}
}

func TestCalculate_Underrepresented(t *testing.T) {
	a := Calculate(binsWithCounts(10, 1, 0, 0))

	assert.InDelta(t, 90.9, a.Distribution[0].Percentage, 1e-9)
	assert.InDelta(t, 9.1, a.Distribution[1].Percentage, 1e-9)
	assert.Contains(t, a.Suggestions, "Consider adding more bullets to 'Skill Set' to provide a fuller picture")
	assert.Contains(t, a.Suggestions, "Strong emphasis on 'Interests' - this is a key part of your profile!")
}

func TestCalculate_TieBreakUsesFixedOrder(t *testing.T) {
	a := Calculate(binsWithCounts(1, 3, 3, 1))
	assert.Equal(t, "Skill Set", a.TopCategory)

	a = Calculate(binsWithCounts(2, 1, 1, 2))
	assert.Equal(t, "Interests", a.TopCategory)
}

func TestCalculate_BoundaryPercentagesProduceNoSuggestion(t *testing.T) {
	// 3/20 = 15.0 and 8/20 = 40.0 sit on the closed interval edges.
	a := Calculate(binsWithCounts(3, 8, 4, 5))
	assert.Equal(t, []float64{15, 40, 20, 25}, percentages(a))
	assert.Equal(t, []string{BalancedMessage}, a.Suggestions)
}

func TestCalculate_SuggestionsCapped(t *testing.T) {
	cfgs := catalog.Bins()
	bins := make([]types.Bin, 0, 6)
	for i := 0; i < 6; i++ {
		cfg := cfgs[i%len(cfgs)]
		cfg.ID = fmt.Sprintf("%s-%d", cfg.ID, i)
		bins = append(bins, types.NewBin(cfg))
	}
	a := Calculate(bins)
	assert.Len(t, a.Suggestions, MaxSuggestions)
}

func TestCalculate_PercentagesSumNearHundred(t *testing.T) {
	cases := [][]int{
		{1, 1, 1, 0},
		{1, 2, 3, 4},
		{7, 0, 3, 1},
		{13, 17, 19, 23},
		{1, 0, 0, 0},
		{2, 2, 2, 1},
	}
	for _, counts := range cases {
		a := Calculate(binsWithCounts(counts...))
		sum := 0.0
		nonEmpty := 0
		for _, d := range a.Distribution {
			sum += d.Percentage
			if d.Count > 0 {
				nonEmpty++
			}
		}
		assert.LessOrEqual(t, math.Abs(sum-100), 0.1*float64(nonEmpty)+1e-9, "counts %v sum %v", counts, sum)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	bins := binsWithCounts(4, 2, 1, 0)

	first, err := json.Marshal(Calculate(bins))
	require.NoError(t, err)
	second, err := json.Marshal(Calculate(bins))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestPercentage_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 6.3, Percentage(1, 16)) // 6.25
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 0.0, Percentage(3, 0))
}

func TestNewResult_SnapshotIsIndependent(t *testing.T) {
	bins := binsWithCounts(1, 0, 0, 0)
	onboarding := &types.OnboardingData{Word: "Curious"}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	result := NewResult(bins, now, onboarding)

	bins[0].Bullets[0].Text = "mutated"
	onboarding.Word = "mutated"

	assert.Equal(t, "Bullet 0", result.Bins[0].Bullets[0].Text)
	assert.Equal(t, "Curious", result.OnboardingData.Word)
	assert.Equal(t, now, result.Timestamp)
	assert.Equal(t, 100.0, result.Analytics.Distribution[0].Percentage)
}
