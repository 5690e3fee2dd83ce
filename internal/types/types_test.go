package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatting_SizedByRunes(t *testing.T) {
	f := PlainFormatting("naïve")
	assert.Len(t, f.Bold, 5)
	assert.Len(t, f.Italic, 5)
	assert.NotContains(t, f.Bold, true)
}

func TestBulletPoint_CloneIsDeep(t *testing.T) {
	b := BulletPoint{ID: "a", Text: "ab", Formatting: PlainFormatting("ab")}
	c := b.Clone()
	c.Formatting.Bold[0] = true

	assert.False(t, b.Formatting.Bold[0])
}

func TestBulletPoint_IsBlank(t *testing.T) {
	assert.True(t, BulletPoint{Text: ""}.IsBlank())
	assert.True(t, BulletPoint{Text: " \t\n"}.IsBlank())
	assert.False(t, BulletPoint{Text: " x "}.IsBlank())
}

func TestBulletPoint_JSON(t *testing.T) {
	b := BulletPoint{ID: "abc", Text: "Led", Formatting: FormattingInfo{Bold: []bool{true, false, false}, Italic: []bool{false, false, false}}, OriginalIndex: 2}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","text":"Led","formatting":{"bold":[true,false,false],"italic":[false,false,false]},"original_index":2}`, string(data))
}

func TestBulletPoint_UnmarshalDuplicateFlag(t *testing.T) {
	tests := []struct {
		name string
		json string
		want bool
	}{
		{"explicit true", `{"id":"a","is_duplicate":true}`, true},
		{"explicit false wins over marker", `{"id":"a-dup-1","is_duplicate":false}`, false},
		{"marker without flag", `{"id":"a-dup-1700000000000"}`, true},
		{"plain id", `{"id":"a"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BulletPoint
			require.NoError(t, json.Unmarshal([]byte(tt.json), &b))
			assert.Equal(t, tt.want, b.IsDuplicate)
		})
	}
}

func TestCloneBullets_NeverNil(t *testing.T) {
	assert.NotNil(t, CloneBullets(nil))
}

func TestBin_Clone(t *testing.T) {
	bin := NewBin(BinConfig{ID: "values", Label: "Values", Color: "#8A6996"})
	bin.Bullets = append(bin.Bullets, BulletPoint{ID: "a"})

	c := bin.Clone()
	c.Bullets[0].ID = "b"
	assert.Equal(t, "a", bin.Bullets[0].ID)
}

func TestAnalysisResult_LabelFor(t *testing.T) {
	r := &AnalysisResult{Bins: []Bin{NewBin(BinConfig{ID: "skillset", Label: "Skill Set"})}, Timestamp: time.Now()}
	assert.Equal(t, "Skill Set", r.LabelFor("skillset"))
	assert.Equal(t, "other", r.LabelFor("other"))
}

func TestOnboardingData_Clone(t *testing.T) {
	var nilData *OnboardingData
	assert.Nil(t, nilData.Clone())

	o := &OnboardingData{Word: "Curious"}
	c := o.Clone()
	c.Word = "Bold"
	assert.Equal(t, "Curious", o.Word)
}

func TestAlignment_Valid(t *testing.T) {
	assert.True(t, AlignmentStrong.Valid())
	assert.True(t, AlignmentModerate.Valid())
	assert.True(t, AlignmentWeak.Valid())
	assert.False(t, Alignment("excellent").Valid())
}

func TestNarrativeResponse_JSONFieldNames(t *testing.T) {
	reframe := "Say it"
	data, err := json.Marshal(NarrativeResponse{
		Paragraph: "p",
		Bullets:   []string{"b"},
		ExperienceSuggestions: []ExperienceSuggestion{
			{Original: "o", Category: "Values", Alignment: AlignmentWeak, Reframe: &reframe, Explanation: "e"},
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"paragraph":"p","bullets":["b"],"experienceSuggestions":[{"original":"o","category":"Values","alignment":"weak","reframe":"Say it","explanation":"e"}]}`, string(data))
}

func TestFormattingInfo_CloneEncodesEmptyArrays(t *testing.T) {
	data, err := json.Marshal(FormattingInfo{}.Clone())
	require.NoError(t, err)
	assert.JSONEq(t, `{"bold":[],"italic":[]}`, string(data))
}
