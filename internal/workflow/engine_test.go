package workflow

import (
	"testing"

	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, ids ...string) (*Engine, *Registry, *BinStore) {
	t.Helper()
	r := NewRegistry(fixedClock())
	for _, id := range ids {
		r.Add(bullet(id, "text "+id))
	}
	s := NewBinStore(catalog.Bins())
	return NewEngine(r, s), r, s
}

func TestEngine_DragMovesPayload(t *testing.T) {
	e, r, s := newEngine(t, "a", "b")

	require.True(t, e.DragStart("a"))
	p, ok := e.Payload()
	require.True(t, ok)
	assert.Equal(t, "a", p.ID)

	require.True(t, e.DragEnd("interests"))
	_, ok = e.Payload()
	assert.False(t, ok)
	assert.False(t, r.Has("a"))

	bin, _ := s.Bin("interests")
	require.Len(t, bin.Bullets, 1)
	assert.Equal(t, "a", bin.Bullets[0].ID)
}

func TestEngine_BinnedBulletCannotBeDragged(t *testing.T) {
	e, _, _ := newEngine(t, "a")
	require.True(t, e.Move("a", "values"))

	assert.False(t, e.DragStart("a"))
	assert.Equal(t, DragIdle, e.State())
}

func TestEngine_DeleteDuplicateCancelsMatchingDrag(t *testing.T) {
	e, r, _ := newEngine(t, "a")
	dup, ok := e.Duplicate("a")
	require.True(t, ok)

	require.True(t, e.DragStart(dup.ID))
	require.True(t, e.DeleteDuplicate(dup.ID))
	assert.Equal(t, DragIdle, e.State())
	assert.Equal(t, 1, r.Len())
}

func TestEngine_DuplicateSkipsIDsHeldInBins(t *testing.T) {
	e, _, _ := newEngine(t, "a")
	first, _ := e.Duplicate("a")
	require.True(t, e.Move(first.ID, "strengths"))

	second, ok := e.Duplicate("a")
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NoError(t, e.CheckPartition())
}

func TestEngine_CheckPartitionDetectsOverlap(t *testing.T) {
	e, _, s := newEngine(t, "a")
	s.MoveIn("skillset", bullet("a", "text a"))

	assert.Error(t, e.CheckPartition())
}

func TestEngine_CompletionGate(t *testing.T) {
	e, _, _ := newEngine(t, "a")
	assert.False(t, e.CanComplete())

	e.Move("a", "skillset")
	assert.True(t, e.CanComplete())
	assert.Equal(t, 1, e.CategorizedCount())

	require.True(t, e.RemoveFromBin("skillset", "a"))
	assert.False(t, e.CanComplete())
}
