package stress

import (
	"runtime"
	"sync/atomic"

	pscpu "github.com/shirou/gopsutil/cpu"
	"go.uber.org/zap"
)

const cpuRoundLength = 1_000_000

// LogicalCores returns the number of logical cores, falling back to
// runtime.NumCPU when the system can't be queried.
func LogicalCores(log *zap.SugaredLogger) int {
	n, err := pscpu.Counts(true)
	if err != nil || n < 1 {
		log.Debugw("falling back to runtime.NumCPU", "err", err)
		return runtime.NumCPU()
	}
	return n
}

// NewCPU creates a CPU stresser. Each one is meant to occupy a single core.
func NewCPU(id int, log *zap.SugaredLogger, stats *Stats) Stresser {
	return &cpu{
		id:    id,
		log:   log,
		stats: stats,
	}
}

type cpu struct {
	id    int
	log   *zap.SugaredLogger
	stats *Stats

	// last round's result, kept so the loop has an observable output
	sum float64
}

func (c *cpu) Name() string {
	return "cpu"
}

func (c *cpu) Stress(stop *atomic.Bool) error {
	// keep the goroutine on its own thread for the whole run
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c.log.Debugw("cpu stresser running", "id", c.id)
	for !stop.Load() {
		c.sum = cpuRound()
		c.stats.CPURounds.Add(1)
	}
	return nil
}

func cpuRound() float64 {
	sum := 0.0
	for i := 0; i < cpuRoundLength; i++ {
		f := float64(i)
		sum += f * f
	}
	return sum
}
