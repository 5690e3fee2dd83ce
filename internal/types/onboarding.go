package types

import (
	"github.com/go-playground/validator/v10"
)

// OnboardingData holds the self-reflection answers collected before narrative generation.
// The defining_word and career_value tags are registered by catalog.NewValidator.
type OnboardingData struct {
	Paragraph   string `json:"paragraph" validate:"required,min=50,max=1200"`
	Sentence    string `json:"sentence" validate:"required,min=10,max=300"`
	Word        string `json:"word" validate:"required,min=2,max=30,alpha,defining_word"`
	CareerValue string `json:"careerValue" validate:"required,career_value"`
}

// Validate validates the OnboardingData using a validator that knows the vocabulary tags.
func (o *OnboardingData) Validate(v *validator.Validate) error {
	return v.Struct(o)
}

// Clone returns a copy of the onboarding data, or nil.
func (o *OnboardingData) Clone() *OnboardingData {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// Alignment grades how well an experience fits the student's defining word
type Alignment string

// Alignment values returned by the narrative service
const (
	AlignmentStrong   Alignment = "strong"
	AlignmentModerate Alignment = "moderate"
	AlignmentWeak     Alignment = "weak"
)

// Valid reports whether a is one of the known alignment grades.
func (a Alignment) Valid() bool {
	switch a {
	case AlignmentStrong, AlignmentModerate, AlignmentWeak:
		return true
	}
	return false
}

// ExperienceSuggestion is the narrative guidance for a single categorized experience
type ExperienceSuggestion struct {
	Original    string    `json:"original"`
	Category    string    `json:"category"`
	Alignment   Alignment `json:"alignment"`
	Reframe     *string   `json:"reframe"`
	Explanation string    `json:"explanation"`
}

// NarrativeResponse is the storytelling guidance produced for an analysis
type NarrativeResponse struct {
	Paragraph             string                 `json:"paragraph"`
	Bullets               []string               `json:"bullets"`
	ExperienceSuggestions []ExperienceSuggestion `json:"experienceSuggestions"`
}
