package stress

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Stats counts completed units of work. All fields are safe for concurrent use.
type Stats struct {
	CPURounds    atomic.Uint64
	MemoryPasses atomic.Uint64
	Frames       atomic.Uint64
}

type Snapshot struct {
	CPURounds    uint64
	MemoryPasses uint64
	Frames       uint64
	At           time.Time
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		CPURounds:    s.CPURounds.Load(),
		MemoryPasses: s.MemoryPasses.Load(),
		Frames:       s.Frames.Load(),
		At:           time.Now(),
	}
}

// Rates returns per-second rates between two snapshots.
func (s Snapshot) Rates(prev Snapshot) (cpuRounds, memoryPasses, frames float64) {
	secs := s.At.Sub(prev.At).Seconds()
	if secs <= 0 {
		return 0, 0, 0
	}
	return float64(s.CPURounds-prev.CPURounds) / secs,
		float64(s.MemoryPasses-prev.MemoryPasses) / secs,
		float64(s.Frames-prev.Frames) / secs
}

// Report logs rates every interval while active returns true, until ctx is done.
func (s *Stats) Report(ctx context.Context, log *zap.SugaredLogger, interval time.Duration, active func() bool) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := s.Snapshot()
	for {
		select {
		case <-ticker.C:
			cur := s.Snapshot()
			if active() {
				cpu, mem, frames := cur.Rates(prev)
				log.Infow("load",
					"cpuRoundsPerSec", cpu,
					"memoryPassesPerSec", mem,
					"fps", frames,
				)
			}
			prev = cur
		case <-ctx.Done():
			return
		}
	}
}
