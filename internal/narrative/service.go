// Package narrative turns a finalized analysis and the student's onboarding
// answers into storytelling guidance using an LLM.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/career-analyzer/internal/llm"
	"github.com/jonathan/career-analyzer/internal/prompts"
	"github.com/jonathan/career-analyzer/internal/types"
)

const (
	promptFile = "narrative.json"
	// maxExperienceRunes bounds each bullet quoted in the prompt.
	maxExperienceRunes = 300
)

// FallbackParagraph is returned when the student skipped onboarding.
const FallbackParagraph = "Complete the onboarding steps to receive personalized narrative guidance."

// FallbackBullets are the onboarding steps listed in the fallback response.
var FallbackBullets = []string{
	"Identify your defining word",
	"Select your career value",
	"Categorize your experiences",
}

// UnavailableMessage is reported when the service has no model client.
const UnavailableMessage = "Narrative analysis is not available. Configure GEMINI_API_KEY."

// Service generates narrative guidance. A nil client makes personalized
// generation unavailable while the fallback response keeps working.
type Service struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// New creates a service around client, which may be nil.
func New(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, tier: llm.TierStandard, logger: logger}
}

// Available reports whether personalized generation is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// Fallback returns the guidance shown before onboarding is complete.
func Fallback() *types.NarrativeResponse {
	return &types.NarrativeResponse{
		Paragraph:             FallbackParagraph,
		Bullets:               append([]string(nil), FallbackBullets...),
		ExperienceSuggestions: []types.ExperienceSuggestion{},
	}
}

// Generate produces guidance for result. Without onboarding data the fixed
// fallback response is returned and no model call is made.
func (s *Service) Generate(ctx context.Context, result *types.AnalysisResult) (*types.NarrativeResponse, error) {
	if result == nil || result.OnboardingData == nil {
		return Fallback(), nil
	}
	if s.client == nil {
		return nil, &UnavailableError{Message: UnavailableMessage}
	}

	onboarding := result.OnboardingData
	system, user, err := BuildPrompts(result)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generating narrative",
		"word", onboarding.Word,
		"career_value", onboarding.CareerValue,
		"model", s.client.GetModel(s.tier),
	)

	text, err := s.client.Generate(ctx, llm.Request{System: system, Prompt: user, Tier: s.tier, JSON: true})
	if err != nil {
		kind := llm.Classify(err)
		s.logger.Error("narrative generation failed", "kind", kind, "error", err)
		return nil, &APICallError{Message: "Failed to generate narrative", Kind: kind, Cause: err}
	}
	s.logger.Debug("narrative response", "body", text)

	return Decode(text)
}

// BuildPrompts renders the system and user prompts for result, which must carry onboarding data.
func BuildPrompts(result *types.AnalysisResult) (string, string, error) {
	system, err := prompts.Get(promptFile, "system")
	if err != nil {
		return "", "", err
	}
	user, err := prompts.Get(promptFile, "user")
	if err != nil {
		return "", "", err
	}
	o := result.OnboardingData
	user = prompts.Format(user, map[string]string{
		"Word":         o.Word,
		"CareerValue":  o.CareerValue,
		"Paragraph":    o.Paragraph,
		"Sentence":     o.Sentence,
		"Distribution": FormatDistribution(result),
		"TopCategory":  result.Analytics.TopCategory,
		"Experiences":  FormatExperiences(result),
	})
	return system, user, nil
}

// FormatDistribution lists each bin's count and share, one per line.
func FormatDistribution(result *types.AnalysisResult) string {
	lines := make([]string, 0, len(result.Analytics.Distribution))
	for _, d := range result.Analytics.Distribution {
		lines = append(lines, fmt.Sprintf("- %s: %d items (%.1f%%)", result.LabelFor(d.BinID), d.Count, d.Percentage))
	}
	return strings.Join(lines, "\n")
}

// FormatExperiences lists the bullets of every non-empty bin under an
// uppercase heading, truncating long bullets.
func FormatExperiences(result *types.AnalysisResult) string {
	var lines []string
	for _, bin := range result.Bins {
		if len(bin.Bullets) == 0 {
			continue
		}
		lines = append(lines, "", "=== "+strings.ToUpper(bin.Label)+" ===")
		for i, b := range bin.Bullets {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, truncate(b.Text, maxExperienceRunes)))
		}
	}
	if len(lines) == 0 {
		return "No experiences categorized yet."
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type rawSuggestion struct {
	Original    string  `json:"original"`
	Category    string  `json:"category"`
	Alignment   string  `json:"alignment"`
	Reframe     *string `json:"reframe"`
	Explanation string  `json:"explanation"`
}

type rawResponse struct {
	Paragraph             string          `json:"paragraph"`
	Bullets               []string        `json:"bullets"`
	ExperienceSuggestions []rawSuggestion `json:"experienceSuggestions"`
}

// Decode parses a model response. Missing fields default to empty values and
// missing or unknown alignments become moderate.
func Decode(text string) (*types.NarrativeResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &raw); err != nil {
		return nil, &ParseError{Message: "model response is not valid narrative JSON", Cause: err}
	}

	resp := &types.NarrativeResponse{
		Paragraph:             raw.Paragraph,
		Bullets:               raw.Bullets,
		ExperienceSuggestions: make([]types.ExperienceSuggestion, 0, len(raw.ExperienceSuggestions)),
	}
	if resp.Bullets == nil {
		resp.Bullets = []string{}
	}
	for _, s := range raw.ExperienceSuggestions {
		alignment := types.Alignment(strings.ToLower(strings.TrimSpace(s.Alignment)))
		if !alignment.Valid() {
			alignment = types.AlignmentModerate
		}
		resp.ExperienceSuggestions = append(resp.ExperienceSuggestions, types.ExperienceSuggestion{
			Original:    s.Original,
			Category:    s.Category,
			Alignment:   alignment,
			Reframe:     s.Reframe,
			Explanation: s.Explanation,
		})
	}
	return resp, nil
}
