package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/logging"
	"github.com/jonathan/career-analyzer/internal/workflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type gauge struct {
	mu    sync.Mutex
	value float64
}

func (g *gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

func (g *gauge) Get() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

func newManager(clock *fakeClock, g *gauge) *Manager {
	return NewManager(Options{
		TTL:     time.Hour,
		Factory: func(string) *workflow.Workflow { return workflow.New(catalog.Bins()) },
		Logger:  logging.Discard(),
		Gauge:   g,
		Clock:   clock.Now,
	})
}

func TestCreateGetDelete(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	g := &gauge{}
	m := newManager(clock, g)

	s := m.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1.0, g.Get())
	assert.Equal(t, workflow.PhaseUpload, s.Snapshot().Phase)
	assert.Len(t, s.Snapshot().Bins, 4)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	assert.Equal(t, 0.0, g.Get())

	_, err = m.Get(s.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestGet_ExpiresIdleSession(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newManager(clock, &gauge{})
	s := m.Create()

	clock.Advance(59 * time.Minute)
	_, err := m.Get(s.ID)
	require.NoError(t, err, "use refreshes the idle timer")

	clock.Advance(59 * time.Minute)
	_, err = m.Get(s.ID)
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)
	_, err = m.Get(s.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, 0, m.Len())
}

func TestSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	g := &gauge{}
	m := newManager(clock, g)

	old := m.Create()
	clock.Advance(30 * time.Minute)
	fresh := m.Create()
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	_, err := m.Get(old.ID)
	assert.Error(t, err)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, g.Get())
}

func TestSession_DoSerializes(t *testing.T) {
	m := NewManager(Options{
		Factory: func(string) *workflow.Workflow { return workflow.New(catalog.Bins()) },
		Logger:  logging.Discard(),
	})
	s := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(wf *workflow.Workflow) error {
				_, err := wf.BeginUpload()
				return err
			})
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, s.Snapshot().Generation)
}

func TestRun_StopsOnCancel(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newManager(clock, &gauge{})
	m.Create()
	clock.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
