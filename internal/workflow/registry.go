package workflow

import (
	"fmt"
	"slices"
	"time"

	"github.com/jonathan/career-analyzer/internal/types"
)

// Registry holds the working set of bullets that are not in any bin.
// During preview it is the editable extraction list; during categorization
// it is the uncategorized pool.
type Registry struct {
	bullets []types.BulletPoint
	now     func() time.Time
}

// NewRegistry creates an empty registry using clock for generated ids.
func NewRegistry(clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{bullets: []types.BulletPoint{}, now: clock}
}

// Replace swaps the whole working set for a copy of bullets.
func (r *Registry) Replace(bullets []types.BulletPoint) {
	r.bullets = types.CloneBullets(bullets)
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.bullets = []types.BulletPoint{}
}

// Len returns the number of bullets held.
func (r *Registry) Len() int {
	return len(r.bullets)
}

// Bullets returns a copy of the bullets in order.
func (r *Registry) Bullets() []types.BulletPoint {
	return types.CloneBullets(r.bullets)
}

// Get returns a copy of the bullet with the given id.
func (r *Registry) Get(id string) (types.BulletPoint, bool) {
	i := r.index(id)
	if i < 0 {
		return types.BulletPoint{}, false
	}
	return r.bullets[i].Clone(), true
}

// Has reports whether a bullet with the given id is held.
func (r *Registry) Has(id string) bool {
	return r.index(id) >= 0
}

// Add appends a bullet to the end of the working set.
func (r *Registry) Add(b types.BulletPoint) {
	r.bullets = append(r.bullets, b.Clone())
}

// AddBlank appends an empty, user-authored bullet and returns it.
func (r *Registry) AddBlank(taken func(string) bool) types.BulletPoint {
	b := types.BulletPoint{
		ID:            r.uniqueID("new-", taken),
		Text:          "",
		Formatting:    types.PlainFormatting(""),
		OriginalIndex: len(r.bullets),
	}
	r.Add(b)
	return b
}

// Edit replaces a bullet's text. Formatting cannot survive a free-text edit,
// so it is reset to all-false arrays sized to the new text.
func (r *Registry) Edit(id, text string) bool {
	return r.EditFormatted(id, text, types.PlainFormatting(text))
}

// EditFormatted replaces a bullet's text together with explicit formatting.
func (r *Registry) EditFormatted(id, text string, formatting types.FormattingInfo) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.bullets[i].Text = text
	r.bullets[i].Formatting = formatting.Clone()
	return true
}

// Delete removes a bullet. During preview any bullet may go; during
// categorization only duplicates are deletable and everything else is a no-op.
func (r *Registry) Delete(id string, phase Phase) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	switch phase {
	case PhasePreview:
	case PhaseCategorize:
		if !r.bullets[i].IsDuplicate {
			return false
		}
	default:
		return false
	}
	r.bullets = slices.Delete(r.bullets, i, i+1)
	return true
}

// Remove takes a bullet out of the working set regardless of phase.
func (r *Registry) Remove(id string) (types.BulletPoint, bool) {
	i := r.index(id)
	if i < 0 {
		return types.BulletPoint{}, false
	}
	b := r.bullets[i]
	r.bullets = slices.Delete(r.bullets, i, i+1)
	return b, true
}

// Duplicate appends a copy of src carrying a fresh duplicate id and returns it.
// taken reports ids already in use elsewhere (for example inside bins).
func (r *Registry) Duplicate(src types.BulletPoint, taken func(string) bool) types.BulletPoint {
	dup := src.Clone()
	dup.ID = r.uniqueID(src.ID+types.DuplicateMarker, taken)
	dup.IsDuplicate = true
	r.bullets = append(r.bullets, dup)
	return dup.Clone()
}

// NonBlank returns copies of the bullets with visible text.
func (r *Registry) NonBlank() []types.BulletPoint {
	out := []types.BulletPoint{}
	for _, b := range r.bullets {
		if !b.IsBlank() {
			out = append(out, b.Clone())
		}
	}
	return out
}

// uniqueID builds prefix+timestamp, bumping the timestamp until the id is unused.
// Timestamps only avoid collisions; they are not meant to be unguessable.
func (r *Registry) uniqueID(prefix string, taken func(string) bool) string {
	stamp := r.now().UnixNano()
	for {
		id := fmt.Sprintf("%s%d", prefix, stamp)
		if !r.Has(id) && (taken == nil || !taken(id)) {
			return id
		}
		stamp++
	}
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.bullets, func(b types.BulletPoint) bool { return b.ID == id })
}
