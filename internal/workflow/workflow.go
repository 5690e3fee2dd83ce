// Package workflow implements the categorization workflow: the bullet registry,
// the bin store, the drag-and-drop categorization engine and the phase controller
// that gates them. A Workflow is a single-writer state object; callers that share
// one across goroutines must serialize access.
package workflow

import (
	"time"

	"github.com/jonathan/career-analyzer/internal/analytics"
	"github.com/jonathan/career-analyzer/internal/types"
)

// Phase is a step of the linear workflow.
type Phase string

// Workflow phases, in order
const (
	PhaseUpload     Phase = "upload"
	PhasePreview    Phase = "preview"
	PhaseCategorize Phase = "categorize"
	PhaseSummary    Phase = "summary"
)

// Ticket identifies an asynchronous request started against a workflow.
// A completion is accepted only while its ticket is still current.
type Ticket struct {
	Generation uint64 `json:"generation"`
	Phase      Phase  `json:"phase"`
}

// TransitionObserver is notified after every phase change.
type TransitionObserver func(from, to Phase)

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the clock used for ids and result timestamps.
func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) { w.now = clock }
}

// WithObserver registers a phase transition observer.
func WithObserver(obs TransitionObserver) Option {
	return func(w *Workflow) { w.observer = obs }
}

// Workflow is the explicit application state driven by the phase controller.
type Workflow struct {
	phase      Phase
	total      int
	generation uint64

	registry *Registry
	bins     *BinStore
	engine   *Engine

	result     *types.AnalysisResult
	onboarding *types.OnboardingData
	narrative  *types.NarrativeResponse

	now      func() time.Time
	observer TransitionObserver
}

// New creates a workflow in the upload phase with empty bins seeded from configs.
func New(configs []types.BinConfig, opts ...Option) *Workflow {
	w := &Workflow{phase: PhaseUpload, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	w.registry = NewRegistry(w.now)
	w.bins = NewBinStore(configs)
	w.engine = NewEngine(w.registry, w.bins)
	return w
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase {
	return w.phase
}

// Generation returns the current request generation.
func (w *Workflow) Generation() uint64 {
	return w.generation
}

// TotalBullets returns the number of live bullets since preview was confirmed.
func (w *Workflow) TotalBullets() int {
	return w.total
}

// Result returns the finalized analysis, or nil before the summary phase.
func (w *Workflow) Result() *types.AnalysisResult {
	return w.result
}

// Narrative returns the last accepted narrative, or nil.
func (w *Workflow) Narrative() *types.NarrativeResponse {
	return w.narrative
}

// Engine exposes the categorization engine for read-only inspection.
func (w *Workflow) Engine() *Engine {
	return w.engine
}

// BeginUpload starts a parse request. Any earlier request in flight becomes stale.
func (w *Workflow) BeginUpload() (Ticket, error) {
	if err := w.require("upload", PhaseUpload); err != nil {
		return Ticket{}, err
	}
	return w.issue(), nil
}

// CompleteUpload applies the parser's bullets. An empty extraction keeps the
// workflow in the upload phase.
func (w *Workflow) CompleteUpload(t Ticket, bullets []types.BulletPoint) error {
	if !w.current(t) {
		return ErrStale
	}
	if len(bullets) == 0 {
		return &TransitionError{From: PhaseUpload, To: PhasePreview, Reason: "no bullet points were extracted"}
	}
	w.registry.Replace(bullets)
	w.transition(PhasePreview)
	return nil
}

// AddBullet appends an empty bullet to the preview list.
func (w *Workflow) AddBullet() (types.BulletPoint, error) {
	if err := w.require("add bullet", PhasePreview); err != nil {
		return types.BulletPoint{}, err
	}
	return w.registry.AddBlank(nil), nil
}

// EditBullet replaces a preview bullet's text, resetting its formatting.
func (w *Workflow) EditBullet(id, text string) (bool, error) {
	if err := w.require("edit bullet", PhasePreview); err != nil {
		return false, err
	}
	return w.registry.Edit(id, text), nil
}

// EditBulletFormatted replaces a preview bullet's text with explicit formatting.
func (w *Workflow) EditBulletFormatted(id, text string, formatting types.FormattingInfo) (bool, error) {
	if err := w.require("edit bullet", PhasePreview); err != nil {
		return false, err
	}
	return w.registry.EditFormatted(id, text, formatting), nil
}

// DeleteBullet removes any bullet from the preview list.
func (w *Workflow) DeleteBullet(id string) (bool, error) {
	if err := w.require("delete bullet", PhasePreview); err != nil {
		return false, err
	}
	return w.registry.Delete(id, PhasePreview), nil
}

// Back returns from preview to upload, discarding the extraction.
func (w *Workflow) Back() error {
	if err := w.require("back", PhasePreview); err != nil {
		return err
	}
	w.generation++
	w.registry.Clear()
	w.transition(PhaseUpload)
	return nil
}

// ConfirmPreview moves the non-blank preview bullets into the uncategorized pool.
func (w *Workflow) ConfirmPreview() error {
	if err := w.require("confirm preview", PhasePreview); err != nil {
		return err
	}
	valid := w.registry.NonBlank()
	if len(valid) == 0 {
		return &TransitionError{From: PhasePreview, To: PhaseCategorize, Reason: "at least one non-blank bullet is required"}
	}
	w.registry.Replace(valid)
	w.bins.Reset()
	w.engine.Cancel()
	w.total = len(valid)
	w.transition(PhaseCategorize)
	return nil
}

// DragStart begins dragging a pool bullet.
func (w *Workflow) DragStart(bulletID string) (bool, error) {
	if err := w.require("drag start", PhaseCategorize); err != nil {
		return false, err
	}
	return w.engine.DragStart(bulletID), nil
}

// DragEnd drops the current payload onto binID ("" for none).
func (w *Workflow) DragEnd(binID string) (bool, error) {
	if err := w.require("drag end", PhaseCategorize); err != nil {
		return false, err
	}
	return w.engine.DragEnd(binID), nil
}

// Move categorizes a pool bullet directly.
func (w *Workflow) Move(bulletID, binID string) (bool, error) {
	if err := w.require("move", PhaseCategorize); err != nil {
		return false, err
	}
	return w.engine.Move(bulletID, binID), nil
}

// RemoveFromBin returns a categorized bullet to the pool.
func (w *Workflow) RemoveFromBin(binID, bulletID string) (bool, error) {
	if err := w.require("remove from bin", PhaseCategorize); err != nil {
		return false, err
	}
	return w.engine.RemoveFromBin(binID, bulletID), nil
}

// Duplicate copies a pool bullet and counts the copy as a live bullet.
func (w *Workflow) Duplicate(bulletID string) (types.BulletPoint, bool, error) {
	if err := w.require("duplicate", PhaseCategorize); err != nil {
		return types.BulletPoint{}, false, err
	}
	dup, ok := w.engine.Duplicate(bulletID)
	if ok {
		w.total++
	}
	return dup, ok, nil
}

// DeleteDuplicate removes a duplicate from the pool.
func (w *Workflow) DeleteDuplicate(bulletID string) (bool, error) {
	if err := w.require("delete duplicate", PhaseCategorize); err != nil {
		return false, err
	}
	ok := w.engine.DeleteDuplicate(bulletID)
	if ok {
		w.total--
	}
	return ok, nil
}

// Finalize runs the completion gate, computes analytics once and enters summary.
func (w *Workflow) Finalize() (*types.AnalysisResult, error) {
	if err := w.require("finalize", PhaseCategorize); err != nil {
		return nil, err
	}
	if !w.engine.CanComplete() {
		return nil, &TransitionError{From: PhaseCategorize, To: PhaseSummary, Reason: "no bullets have been categorized"}
	}
	w.engine.Cancel()
	w.result = analytics.NewResult(w.bins.Bins(), w.now(), nil)
	w.transition(PhaseSummary)
	return w.result, nil
}

// SetOnboarding records the onboarding answers for the summary. They never
// modify the finalized result; NarrativeInput attaches them to a copy instead.
func (w *Workflow) SetOnboarding(data types.OnboardingData) error {
	if err := w.require("onboarding", PhaseSummary); err != nil {
		return err
	}
	w.onboarding = data.Clone()
	return nil
}

// Onboarding returns a copy of the recorded onboarding answers, or nil.
func (w *Workflow) Onboarding() *types.OnboardingData {
	return w.onboarding.Clone()
}

// NarrativeInput returns a copy of the result extended with the onboarding answers.
func (w *Workflow) NarrativeInput() (*types.AnalysisResult, error) {
	if err := w.require("narrative", PhaseSummary); err != nil {
		return nil, err
	}
	in := *w.result
	in.Bins = types.CloneBins(w.result.Bins)
	in.OnboardingData = w.Onboarding()
	return &in, nil
}

// BeginNarrative starts a narrative request for the finalized result.
func (w *Workflow) BeginNarrative() (Ticket, error) {
	if err := w.require("narrative", PhaseSummary); err != nil {
		return Ticket{}, err
	}
	return w.issue(), nil
}

// CompleteNarrative stores a narrative if its ticket is still current.
func (w *Workflow) CompleteNarrative(t Ticket, resp *types.NarrativeResponse) error {
	if !w.current(t) {
		return ErrStale
	}
	w.narrative = resp
	return nil
}

// Reset returns to upload from any phase and clears all derived state.
// In-flight requests become stale.
func (w *Workflow) Reset() {
	w.generation++
	w.registry.Clear()
	w.bins.Reset()
	w.engine.Cancel()
	w.result = nil
	w.onboarding = nil
	w.narrative = nil
	w.total = 0
	w.transition(PhaseUpload)
}

// CheckInvariants verifies the pool/bin partition.
func (w *Workflow) CheckInvariants() error {
	return w.engine.CheckPartition()
}

func (w *Workflow) require(op string, want Phase) error {
	if w.phase != want {
		return &PhaseError{Op: op, Phase: w.phase, Want: want}
	}
	return nil
}

func (w *Workflow) issue() Ticket {
	w.generation++
	return Ticket{Generation: w.generation, Phase: w.phase}
}

func (w *Workflow) current(t Ticket) bool {
	return t.Generation == w.generation && t.Phase == w.phase
}

func (w *Workflow) transition(to Phase) {
	from := w.phase
	w.phase = to
	if w.observer != nil && from != to {
		w.observer(from, to)
	}
}
