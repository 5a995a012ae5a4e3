package stress

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type waitStresser struct {
	runs   atomic.Int32
	panics bool
}

func (w *waitStresser) Name() string { return "wait" }

func (w *waitStresser) Stress(stop *atomic.Bool) error {
	w.runs.Add(1)
	if w.panics {
		panic("boom")
	}
	for !stop.Load() {
	}
	return nil
}

func TestControllerStartStop(t *testing.T) {
	a, b := &waitStresser{}, &waitStresser{}
	c := NewController(zaptest.NewLogger(t).Sugar(), func() ([]Stresser, error) {
		return []Stresser{a, b}, nil
	})

	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Stopped())
	assert.ErrorIs(t, c.Stop(), ErrNotStressing)

	require.NoError(t, c.Start())
	assert.Equal(t, Stressing, c.State())
	assert.False(t, c.Stopped())
	assert.ErrorIs(t, c.Start(), ErrAlreadyStressing)

	require.NoError(t, c.Stop())
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Stopped())
	assert.EqualValues(t, 1, a.runs.Load())
	assert.EqualValues(t, 1, b.runs.Load())

	// restartable
	require.NoError(t, c.Start())
	require.NoError(t, c.Stop())
	assert.EqualValues(t, 2, a.runs.Load())
}

// slowStresser keeps running after stop is raised until release is closed.
type slowStresser struct {
	sawStop chan struct{}
	release chan struct{}
}

func (s *slowStresser) Name() string { return "slow" }

func (s *slowStresser) Stress(stop *atomic.Bool) error {
	for !stop.Load() {
	}
	close(s.sawStop)
	<-s.release
	return nil
}

func TestControllerStateDuringJoin(t *testing.T) {
	slow := &slowStresser{sawStop: make(chan struct{}), release: make(chan struct{})}
	c := NewController(zaptest.NewLogger(t).Sugar(), func() ([]Stresser, error) {
		return []Stresser{slow}, nil
	})
	require.NoError(t, c.Start())

	stopped := make(chan error)
	go func() { stopped <- c.Stop() }()

	select {
	case <-slow.sawStop:
	case <-time.After(10 * time.Second):
		t.Fatal("stresser never saw the stop flag")
	}

	// Stop is still joining; State must answer without waiting for it
	state := make(chan State)
	go func() { state <- c.State() }()
	select {
	case s := <-state:
		assert.Equal(t, Idle, s)
	case <-time.After(time.Second):
		t.Fatal("State blocked while Stop was joining")
	}
	assert.True(t, c.Stopped())

	close(slow.release)
	require.NoError(t, <-stopped)
	assert.Equal(t, Idle, c.State())
}

func TestControllerRecoversPanic(t *testing.T) {
	c := NewController(zaptest.NewLogger(t).Sugar(), func() ([]Stresser, error) {
		return []Stresser{&waitStresser{}, &waitStresser{panics: true}}, nil
	})

	require.NoError(t, c.Start())
	err := c.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait stresser: panic: boom")
	assert.Equal(t, Idle, c.State())
}

func TestControllerFactoryError(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(zaptest.NewLogger(t).Sugar(), func() ([]Stresser, error) {
		return nil, boom
	})

	assert.ErrorIs(t, c.Start(), boom)
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Stopped())
}

func TestStressers(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	factory := Stressers(Options{CPUWorkers: 3, MemorySize: MinMemorySize}, log, &Stats{})

	stressers, err := factory()
	require.NoError(t, err)
	require.Len(t, stressers, 4)
	for _, s := range stressers[:3] {
		assert.Equal(t, "cpu", s.Name())
	}
	assert.Equal(t, "memory", stressers[3].Name())
}

func TestStressersDefaultWorkers(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	factory := Stressers(Options{MemorySize: MinMemorySize}, log, &Stats{})

	stressers, err := factory()
	require.NoError(t, err)
	assert.Len(t, stressers, LogicalCores(log)+1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "stressing", Stressing.String())
	assert.Equal(t, "State(7)", State(7).String())
}
