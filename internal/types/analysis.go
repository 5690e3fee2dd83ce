package types

import "time"

// BinConfig is the static configuration of one categorization bin
type BinConfig struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description" yaml:"description"`
}

// Bin is a categorization bucket and the bullets it currently owns
type Bin struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Color       string        `json:"color"`
	Description string        `json:"description,omitempty"`
	Bullets     []BulletPoint `json:"bullets"`
}

// NewBin creates an empty bin from its configuration.
func NewBin(cfg BinConfig) Bin {
	return Bin{
		ID:          cfg.ID,
		Label:       cfg.Label,
		Color:       cfg.Color,
		Description: cfg.Description,
		Bullets:     []BulletPoint{},
	}
}

// Clone returns a deep copy of the bin.
func (b Bin) Clone() Bin {
	b.Bullets = CloneBullets(b.Bullets)
	return b
}

// CloneBins deep-copies a bin slice.
func CloneBins(in []Bin) []Bin {
	out := make([]Bin, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}

// Distribution is the share of categorized bullets held by one bin
type Distribution struct {
	BinID      string  `json:"bin_id"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Analytics is the derived summary of final bin membership
type Analytics struct {
	Distribution []Distribution `json:"distribution"`
	TopCategory  string         `json:"top_category"`
	Suggestions  []string       `json:"suggestions"`
}

// AnalysisResult is the immutable snapshot produced when categorization is finalized
type AnalysisResult struct {
	Bins           []Bin           `json:"bins"`
	Analytics      Analytics       `json:"analytics"`
	Timestamp      time.Time       `json:"timestamp"`
	OnboardingData *OnboardingData `json:"onboardingData,omitempty"`
}

// LabelFor returns the label of the bin with the given id, or the id itself.
func (r *AnalysisResult) LabelFor(binID string) string {
	for _, b := range r.Bins {
		if b.ID == binID {
			return b.Label
		}
	}
	return binID
}
