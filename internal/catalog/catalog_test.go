package catalog

import (
	"testing"

	"github.com/jonathan/career-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBins_FixedOrder(t *testing.T) {
	assert.Equal(t, []string{"interests", "skillset", "values", "strengths"}, BinIDs())

	bins := Bins()
	require.Len(t, bins, 4)
	assert.Equal(t, "Skill Set", bins[1].Label)
	assert.Equal(t, "#00693E", bins[1].Color)
	assert.NotEmpty(t, bins[3].Description)
}

func TestBins_ReturnsCopy(t *testing.T) {
	bins := Bins()
	bins[0].Label = "changed"
	assert.Equal(t, "Interests", Bins()[0].Label)
}

func TestIsBinID(t *testing.T) {
	assert.True(t, IsBinID("values"))
	assert.False(t, IsBinID("Values"))
	assert.False(t, IsBinID(""))
}

func TestVocabularies(t *testing.T) {
	assert.True(t, IsCareerValue("Autonomy"))
	assert.False(t, IsCareerValue("autonomy"))
	assert.True(t, IsDefiningWord("creative"))
	assert.True(t, IsDefiningWord(" Curious "))
	assert.False(t, IsDefiningWord("Xyzzy"))
	assert.NotEmpty(t, CareerValues())
	assert.NotEmpty(t, DefiningWords())
}

func validOnboarding() types.OnboardingData {
	return types.OnboardingData{
		Paragraph:   "I love building things with people and learning how complex systems fit together.",
		Sentence:    "I build things that help people.",
		Word:        "Creative",
		CareerValue: "Impact",
	}
}

func TestNewValidator_Onboarding(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(o *types.OnboardingData)
		wantErr bool
	}{
		{"valid", func(_ *types.OnboardingData) {}, false},
		{"short paragraph", func(o *types.OnboardingData) { o.Paragraph = "too short" }, true},
		{"short sentence", func(o *types.OnboardingData) { o.Sentence = "tiny" }, true},
		{"word with digits", func(o *types.OnboardingData) { o.Word = "Creative1" }, true},
		{"word outside vocabulary", func(o *types.OnboardingData) { o.Word = "Sleepy" }, true},
		{"lowercase vocabulary word", func(o *types.OnboardingData) { o.Word = "curious" }, false},
		{"unknown career value", func(o *types.OnboardingData) { o.CareerValue = "Money" }, true},
		{"missing career value", func(o *types.OnboardingData) { o.CareerValue = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOnboarding()
			tt.mutate(&o)
			err := o.Validate(v)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
