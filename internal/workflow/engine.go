package workflow

import (
	"fmt"

	"github.com/jonathan/career-analyzer/internal/types"
)

// DragState is the state of the categorization drag machine.
type DragState string

// Drag states
const (
	DragIdle     DragState = "idle"
	DragDragging DragState = "dragging"
)

// Engine moves bullets between the registry's uncategorized pool and the bin store.
// It is the only writer to both, and every operation leaves the pool and the bins
// as disjoint partitions of the live bullet set. Lookups that miss are silent no-ops.
type Engine struct {
	registry *Registry
	bins     *BinStore
	state    DragState
	payload  *types.BulletPoint
}

// NewEngine creates an idle engine over registry and bins.
func NewEngine(registry *Registry, bins *BinStore) *Engine {
	return &Engine{registry: registry, bins: bins, state: DragIdle}
}

// State returns the current drag state.
func (e *Engine) State() DragState {
	return e.state
}

// Payload returns a copy of the bullet being dragged, if any.
func (e *Engine) Payload() (types.BulletPoint, bool) {
	if e.payload == nil {
		return types.BulletPoint{}, false
	}
	return e.payload.Clone(), true
}

// DragStart selects a bullet from the uncategorized pool as the drag payload.
func (e *Engine) DragStart(bulletID string) bool {
	b, ok := e.registry.Get(bulletID)
	if !ok {
		return false
	}
	e.state = DragDragging
	e.payload = &b
	return true
}

// DragEnd drops the payload on targetBinID ("" for no target). The bullet moves only
// when the target is a real bin and the payload is still in the pool. The engine
// always returns to idle.
func (e *Engine) DragEnd(targetBinID string) bool {
	payload := e.payload
	e.state = DragIdle
	e.payload = nil

	if payload == nil || targetBinID == "" {
		return false
	}
	return e.Move(payload.ID, targetBinID)
}

// Cancel abandons any drag in progress.
func (e *Engine) Cancel() {
	e.state = DragIdle
	e.payload = nil
}

// Move places a pool bullet into a bin without a drag gesture.
func (e *Engine) Move(bulletID, binID string) bool {
	if !e.bins.HasBin(binID) || !e.registry.Has(bulletID) {
		return false
	}
	b, _ := e.registry.Remove(bulletID)
	return e.bins.MoveIn(binID, b)
}

// RemoveFromBin returns a bullet from a bin to the end of the pool.
func (e *Engine) RemoveFromBin(binID, bulletID string) bool {
	b, ok := e.bins.MoveOut(binID, bulletID)
	if !ok {
		return false
	}
	e.registry.Add(b)
	return true
}

// Duplicate copies a pool bullet into a new deletable pool bullet.
func (e *Engine) Duplicate(bulletID string) (types.BulletPoint, bool) {
	src, ok := e.registry.Get(bulletID)
	if !ok {
		return types.BulletPoint{}, false
	}
	return e.registry.Duplicate(src, e.inBins), true
}

// DeleteDuplicate removes a duplicate from the pool. Originals are never deleted.
func (e *Engine) DeleteDuplicate(bulletID string) bool {
	if e.payload != nil && e.payload.ID == bulletID {
		e.Cancel()
	}
	return e.registry.Delete(bulletID, PhaseCategorize)
}

// CategorizedCount returns the number of bullets placed in bins.
func (e *Engine) CategorizedCount() int {
	return e.bins.CategorizedCount()
}

// CanComplete reports whether categorization may be finalized.
func (e *Engine) CanComplete() bool {
	return e.bins.CategorizedCount() > 0
}

// CheckPartition verifies that no bullet id appears twice across the pool and bins.
func (e *Engine) CheckPartition() error {
	seen := make(map[string]string)
	for _, b := range e.registry.bullets {
		if where, dup := seen[b.ID]; dup {
			return fmt.Errorf("bullet %s appears in pool and %s", b.ID, where)
		}
		seen[b.ID] = "pool"
	}
	for _, bin := range e.bins.bins {
		for _, b := range bin.Bullets {
			if where, dup := seen[b.ID]; dup {
				return fmt.Errorf("bullet %s appears in bin %s and %s", b.ID, bin.ID, where)
			}
			seen[b.ID] = "bin " + bin.ID
		}
	}
	return nil
}

func (e *Engine) inBins(id string) bool {
	_, ok := e.bins.Contains(id)
	return ok
}
