// Package stress drives synthetic CPU and memory load.
//
// Every stresser polls one shared stop flag and nothing else. The Controller
// owns that flag and is the only thing that ever blocks, when it joins the
// workers on Stop.
package stress

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyStressing = errors.New("already stressing")
	ErrNotStressing     = errors.New("not stressing")
)

// Stresser loads one resource until stop reads true.
type Stresser interface {
	Name() string
	Stress(stop *atomic.Bool) error
}

type State int

const (
	Idle State = iota
	Stressing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Stressing:
		return "stressing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// NewController returns an idle controller that runs the stressers made by
// factory on every Start.
func NewController(log *zap.SugaredLogger, factory func() ([]Stresser, error)) *Controller {
	c := &Controller{
		log:     log,
		factory: factory,
	}
	c.stop.Store(true)
	return c
}

type Controller struct {
	log     *zap.SugaredLogger
	factory func() ([]Stresser, error)

	// mu serialises Start and Stop, and is held while Stop joins.
	mu    sync.Mutex
	state atomic.Int32
	stop  atomic.Bool
	group *errgroup.Group
}

// State never blocks, even while Stop is joining the stressers.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Stopped reports the value of the shared stop flag.
func (c *Controller) Stopped() bool {
	return c.stop.Load()
}

// Start spawns one goroutine per stresser.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == Stressing {
		return ErrAlreadyStressing
	}

	stressers, err := c.factory()
	if err != nil {
		return fmt.Errorf("creating stressers failed: %w", err)
	}

	c.stop.Store(false)
	c.state.Store(int32(Stressing))
	c.group = new(errgroup.Group)
	for _, s := range stressers {
		c.group.Go(func() (err error) {
			defer catchPanic(s.Name(), &err)
			return s.Stress(&c.stop)
		})
	}

	c.log.Infow("started stressers", "count", len(stressers))
	return nil
}

// Stop raises the stop flag and waits for every stresser to return.
// The state reads Idle as soon as the flag is raised.
// The first stresser error is returned.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() != Stressing {
		return ErrNotStressing
	}

	c.stop.Store(true)
	c.state.Store(int32(Idle))
	err := c.group.Wait()
	c.group = nil

	if err != nil {
		c.log.Warnw("stressers stopped with error", "err", err)
		return err
	}
	c.log.Infow("stopped stressers")
	return nil
}

func catchPanic(name string, err *error) {
	if v := recover(); v != nil {
		perr, ok := v.(error)
		if !ok {
			perr = fmt.Errorf("panic: %v", v)
		}
		*err = fmt.Errorf("%s stresser: %w\n%v", name, perr, string(debug.Stack()))
	}
}

// Options selects how much load Stressers creates.
type Options struct {
	// CPUWorkers is the number of CPU stressers; 0 means one per logical core.
	CPUWorkers int
	// MemorySize is the memory stresser's buffer size in bytes.
	MemorySize uint64
}

// Stressers returns a factory creating the CPU stressers followed by a single
// memory stresser.
func Stressers(opts Options, log *zap.SugaredLogger, stats *Stats) func() ([]Stresser, error) {
	return func() ([]Stresser, error) {
		workers := opts.CPUWorkers
		if workers == 0 {
			workers = LogicalCores(log)
		}

		memory, err := NewMemory(opts.MemorySize, log, stats)
		if err != nil {
			return nil, err
		}

		stressers := make([]Stresser, 0, workers+1)
		for i := 0; i < workers; i++ {
			stressers = append(stressers, NewCPU(i, log, stats))
		}
		return append(stressers, memory), nil
	}
}
