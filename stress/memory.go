package stress

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/mem"
	"go.uber.org/zap"
)

const (
	DefaultMemorySize = 512 * humanize.MiByte
	MinMemorySize     = humanize.MiByte

	memoryChunk = humanize.MiByte
)

// NewMemory creates a memory stresser that owns a buffer of size bytes.
// The buffer is allocated when stressing starts and dropped when it ends.
func NewMemory(size uint64, log *zap.SugaredLogger, stats *Stats) (Stresser, error) {
	if size < MinMemorySize {
		return nil, fmt.Errorf("memory buffer of %v is smaller than %v",
			humanize.IBytes(size), humanize.IBytes(MinMemorySize))
	}

	if vm, err := mem.VirtualMemory(); err == nil && size > vm.Available {
		log.Warnw("memory buffer exceeds available memory",
			"buffer", humanize.IBytes(size),
			"available", humanize.IBytes(vm.Available),
		)
	}

	return &memory{
		size:  size,
		log:   log,
		stats: stats,
	}, nil
}

type memory struct {
	size  uint64
	log   *zap.SugaredLogger
	stats *Stats
}

func (m *memory) Name() string {
	return "memory"
}

func (m *memory) Stress(stop *atomic.Bool) error {
	buf := make([]byte, m.size)
	m.log.Debugw("memory stresser running", "buffer", humanize.IBytes(m.size))

	for {
		if !fill(buf, stop) {
			return nil
		}
		m.stats.MemoryPasses.Add(1)
	}
}

// fill writes byte(i%256) to every position of buf, checking stop between
// chunks. It reports whether the whole buffer was written.
func fill(buf []byte, stop *atomic.Bool) bool {
	for start := 0; start < len(buf); start += memoryChunk {
		if stop.Load() {
			return false
		}
		end := min(start+memoryChunk, len(buf))
		for i := start; i < end; i++ {
			buf[i] = byte(i)
		}
	}
	return true
}
