package schemas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonathan/career-analyzer/internal/analytics"
	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult(t *testing.T) []byte {
	t.Helper()
	bins := make([]types.Bin, 0, 4)
	for _, cfg := range catalog.Bins() {
		bins = append(bins, types.NewBin(cfg))
	}
	bins[0].Bullets = append(bins[0].Bullets, types.BulletPoint{ID: "a", Text: "Hi", Formatting: types.PlainFormatting("Hi")})
	result := analytics.NewResult(bins, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), nil)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	return data
}

func TestValidate_AnalysisResult(t *testing.T) {
	assert.NoError(t, Validate(AnalysisResult, validResult(t)))
}

func TestValidate_AnalysisResultWithOnboarding(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(validResult(t), &doc))
	doc["onboardingData"] = map[string]any{"paragraph": "p", "sentence": "s", "word": "w", "careerValue": "Impact"}
	data, _ := json.Marshal(doc)

	assert.NoError(t, Validate(AnalysisResult, data))

	doc["onboardingData"] = nil
	data, _ = json.Marshal(doc)
	assert.NoError(t, Validate(AnalysisResult, data))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{"missing analytics", func(doc map[string]any) { delete(doc, "analytics") }},
		{"bad timestamp", func(doc map[string]any) { doc["timestamp"] = "yesterday" }},
		{"bins not array", func(doc map[string]any) { doc["bins"] = "x" }},
		{"bad color", func(doc map[string]any) {
			doc["bins"].([]any)[0].(map[string]any)["color"] = "blue"
		}},
		{"bullet without id", func(doc map[string]any) {
			bullet := doc["bins"].([]any)[0].(map[string]any)["bullets"].([]any)[0].(map[string]any)
			delete(bullet, "id")
		}},
		{"negative count", func(doc map[string]any) {
			dist := doc["analytics"].(map[string]any)["distribution"].([]any)[0].(map[string]any)
			dist["count"] = -1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal(validResult(t), &doc))
			tt.mutate(doc)
			data, err := json.Marshal(doc)
			require.NoError(t, err)

			err = Validate(AnalysisResult, data)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(AnalysisResult, []byte(`{"bins": [`))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{"name": 1}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Errors[0].Field)
}
