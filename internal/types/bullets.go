// Package types provides type definitions for structured data used throughout the career analyzer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
)

// DuplicateMarker is embedded in the id of every duplicated bullet.
const DuplicateMarker = "-dup-"

// FormattingInfo holds character-level formatting, one entry per rune of the bullet text.
type FormattingInfo struct {
	Bold   []bool `json:"bold"`
	Italic []bool `json:"italic"`
}

// PlainFormatting returns all-false formatting sized for text.
func PlainFormatting(text string) FormattingInfo {
	n := len([]rune(text))
	return FormattingInfo{
		Bold:   make([]bool, n),
		Italic: make([]bool, n),
	}
}

// Clone returns a deep copy of the formatting arrays. The copies are never nil
// so they encode as [] rather than null.
func (f FormattingInfo) Clone() FormattingInfo {
	return FormattingInfo{
		Bold:   append(make([]bool, 0, len(f.Bold)), f.Bold...),
		Italic: append(make([]bool, 0, len(f.Italic)), f.Italic...),
	}
}

// BulletPoint represents one extracted or user-added resume line
type BulletPoint struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Formatting    FormattingInfo `json:"formatting"`
	OriginalIndex int            `json:"original_index"`
	IsDuplicate   bool           `json:"is_duplicate,omitempty"`
}

// Clone returns a deep copy of the bullet.
func (b BulletPoint) Clone() BulletPoint {
	b.Formatting = b.Formatting.Clone()
	return b
}

// IsBlank reports whether the bullet has no visible text.
func (b BulletPoint) IsBlank() bool {
	return strings.TrimSpace(b.Text) == ""
}

// HasDuplicateMarker reports whether an id carries the duplicate marker.
func HasDuplicateMarker(id string) bool {
	return strings.Contains(id, DuplicateMarker)
}

// UnmarshalJSON decodes a bullet. Payloads without is_duplicate fall back to
// the id marker to decide whether the bullet is a duplicate.
func (b *BulletPoint) UnmarshalJSON(data []byte) error {
	type plain BulletPoint
	aux := struct {
		*plain
		IsDuplicate *bool `json:"is_duplicate"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.IsDuplicate != nil {
		b.IsDuplicate = *aux.IsDuplicate
	} else {
		b.IsDuplicate = HasDuplicateMarker(b.ID)
	}
	return nil
}

// CloneBullets deep-copies a bullet slice, never returning nil.
func CloneBullets(in []BulletPoint) []BulletPoint {
	out := make([]BulletPoint, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
