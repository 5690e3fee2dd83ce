// Package catalog exposes the static configuration embedded in the binary:
// the four categorization bins and the onboarding vocabularies.
package catalog

import (
	"embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/career-analyzer/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var files embed.FS

type binsFile struct {
	Bins []types.BinConfig `yaml:"bins"`
}

type valuesFile struct {
	CareerValues []string `yaml:"career_values"`
}

type wordsFile struct {
	DefiningWords []string `yaml:"defining_words"`
}

var (
	loadOnce      sync.Once
	bins          []types.BinConfig
	careerValues  []string
	definingWords map[string]bool
	wordList      []string
)

func load() {
	loadOnce.Do(func() {
		var b binsFile
		mustDecode("bins.yaml", &b)
		if len(b.Bins) != 4 {
			panic(fmt.Sprintf("catalog: bins.yaml must define 4 bins, got %d", len(b.Bins)))
		}
		bins = b.Bins

		var v valuesFile
		mustDecode("career_values.yaml", &v)
		careerValues = v.CareerValues

		var w wordsFile
		mustDecode("words.yaml", &w)
		wordList = w.DefiningWords
		definingWords = make(map[string]bool, len(w.DefiningWords))
		for _, word := range w.DefiningWords {
			definingWords[strings.ToLower(word)] = true
		}
	})
}

func mustDecode(name string, out any) {
	data, err := files.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("catalog: failed to read %s: %v", name, err))
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("catalog: failed to parse %s: %v", name, err))
	}
}

// Bins returns the bin configurations in fixed iteration order.
func Bins() []types.BinConfig {
	load()
	return slices.Clone(bins)
}

// BinIDs returns the bin ids in fixed iteration order.
func BinIDs() []string {
	load()
	ids := make([]string, len(bins))
	for i, b := range bins {
		ids[i] = b.ID
	}
	return ids
}

// IsBinID reports whether id names one of the fixed bins.
func IsBinID(id string) bool {
	load()
	for _, b := range bins {
		if b.ID == id {
			return true
		}
	}
	return false
}

// CareerValues returns the career value vocabulary.
func CareerValues() []string {
	load()
	return slices.Clone(careerValues)
}

// IsCareerValue reports whether v is exactly one of the career values.
func IsCareerValue(v string) bool {
	load()
	return slices.Contains(careerValues, v)
}

// DefiningWords returns the defining-word vocabulary.
func DefiningWords() []string {
	load()
	return slices.Clone(wordList)
}

// IsDefiningWord reports whether w is in the vocabulary, ignoring case.
func IsDefiningWord(w string) bool {
	load()
	return definingWords[strings.ToLower(strings.TrimSpace(w))]
}

// NewValidator returns a validator with the vocabulary tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("defining_word", func(fl validator.FieldLevel) bool {
		return IsDefiningWord(fl.Field().String())
	})
	_ = v.RegisterValidation("career_value", func(fl validator.FieldLevel) bool {
		return IsCareerValue(fl.Field().String())
	})
	return v
}
