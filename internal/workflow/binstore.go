package workflow

import (
	"slices"

	"github.com/jonathan/career-analyzer/internal/types"
)

// BinStore holds the fixed categorization bins and their membership.
type BinStore struct {
	configs []types.BinConfig
	bins    []types.Bin
}

// NewBinStore creates a store with one empty bin per configuration, in order.
func NewBinStore(configs []types.BinConfig) *BinStore {
	s := &BinStore{configs: slices.Clone(configs)}
	s.Reset()
	return s
}

// Reset empties every bin, restoring the seeded configuration.
func (s *BinStore) Reset() {
	s.bins = make([]types.Bin, len(s.configs))
	for i, cfg := range s.configs {
		s.bins[i] = types.NewBin(cfg)
	}
}

// Bins returns a deep copy of all bins in fixed order.
func (s *BinStore) Bins() []types.Bin {
	return types.CloneBins(s.bins)
}

// Bin returns a copy of the bin with the given id.
func (s *BinStore) Bin(id string) (types.Bin, bool) {
	i := s.index(id)
	if i < 0 {
		return types.Bin{}, false
	}
	return s.bins[i].Clone(), true
}

// HasBin reports whether id names a bin in this store.
func (s *BinStore) HasBin(id string) bool {
	return s.index(id) >= 0
}

// MoveIn appends a bullet to the named bin. Unknown bins are a no-op.
func (s *BinStore) MoveIn(binID string, b types.BulletPoint) bool {
	i := s.index(binID)
	if i < 0 {
		return false
	}
	s.bins[i].Bullets = append(s.bins[i].Bullets, b.Clone())
	return true
}

// MoveOut removes a bullet from the named bin if present.
func (s *BinStore) MoveOut(binID, bulletID string) (types.BulletPoint, bool) {
	i := s.index(binID)
	if i < 0 {
		return types.BulletPoint{}, false
	}
	bullets := s.bins[i].Bullets
	j := slices.IndexFunc(bullets, func(b types.BulletPoint) bool { return b.ID == bulletID })
	if j < 0 {
		return types.BulletPoint{}, false
	}
	b := bullets[j]
	s.bins[i].Bullets = slices.Delete(bullets, j, j+1)
	return b, true
}

// Contains reports which bin, if any, owns the bullet.
func (s *BinStore) Contains(bulletID string) (string, bool) {
	for _, bin := range s.bins {
		for _, b := range bin.Bullets {
			if b.ID == bulletID {
				return bin.ID, true
			}
		}
	}
	return "", false
}

// CategorizedCount returns the number of bullets across all bins.
func (s *BinStore) CategorizedCount() int {
	n := 0
	for _, bin := range s.bins {
		n += len(bin.Bullets)
	}
	return n
}

func (s *BinStore) index(id string) int {
	return slices.IndexFunc(s.bins, func(b types.Bin) bool { return b.ID == id })
}
