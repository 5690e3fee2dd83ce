package workflow

import "github.com/jonathan/career-analyzer/internal/types"

// State is a read-only view of a workflow, safe to serialize.
type State struct {
	Phase            Phase                    `json:"phase"`
	Generation       uint64                   `json:"generation"`
	TotalBullets     int                      `json:"total_bullets"`
	CategorizedCount int                      `json:"categorized_count"`
	CanComplete      bool                     `json:"can_complete"`
	Drag             DragState                `json:"drag"`
	DragPayload      *types.BulletPoint       `json:"drag_payload,omitempty"`
	Preview          []types.BulletPoint      `json:"preview,omitempty"`
	Uncategorized    []types.BulletPoint      `json:"uncategorized"`
	Bins             []types.Bin              `json:"bins"`
	Result           *types.AnalysisResult    `json:"result,omitempty"`
	Onboarding       *types.OnboardingData    `json:"onboarding,omitempty"`
	Narrative        *types.NarrativeResponse `json:"narrative,omitempty"`
}

// Snapshot returns a deep copy of the workflow state.
func (w *Workflow) Snapshot() State {
	s := State{
		Phase:            w.phase,
		Generation:       w.generation,
		TotalBullets:     w.total,
		CategorizedCount: w.engine.CategorizedCount(),
		CanComplete:      w.phase == PhaseCategorize && w.engine.CanComplete(),
		Drag:             w.engine.State(),
		Uncategorized:    []types.BulletPoint{},
		Bins:             w.bins.Bins(),
		Result:           w.result,
		Onboarding:       w.Onboarding(),
		Narrative:        w.narrative,
	}
	if p, ok := w.engine.Payload(); ok {
		s.DragPayload = &p
	}
	if w.phase == PhasePreview {
		s.Preview = w.registry.Bullets()
	} else {
		s.Uncategorized = w.registry.Bullets()
	}
	return s
}
