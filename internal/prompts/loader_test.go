package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_NarrativePrompts(t *testing.T) {
	system, err := Get("narrative.json", "system")
	require.NoError(t, err)
	assert.Contains(t, system, "career storytelling strategist")
	assert.Contains(t, system, "experienceSuggestions")

	user, err := Get("narrative.json", "user")
	require.NoError(t, err)
	assert.Contains(t, user, "{{.Word}}")
	assert.Contains(t, user, "{{.Experiences}}")
}

func TestGet_Missing(t *testing.T) {
	_, err := Get("nonexistent.json", "system")
	assert.ErrorContains(t, err, "not found")

	_, err = Get("narrative.json", "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestFormat(t *testing.T) {
	template := "Word {{.Word}} / {{.Word}} / value {{.CareerValue}} / {{.Unknown}}"
	got := Format(template, map[string]string{"Word": "Curious", "CareerValue": "Impact"})
	assert.Equal(t, "Word Curious / Curious / value Impact / {{.Unknown}}", got)
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	got := Format("{{.A}}", map[string]string{"A": "{{.B}}", "B": "x"})
	assert.Equal(t, "{{.B}}", got)
}
