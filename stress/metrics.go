package stress

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors exposes stats as prometheus counters, plus a gauge that is 1
// while active returns true.
func (s *Stats) Collectors(active func() bool) []prometheus.Collector {
	counter := func(name, help string, v func() uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "glstress",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(v())
		})
	}

	return []prometheus.Collector{
		counter("cpu_rounds_total", "Completed CPU stress rounds.", s.CPURounds.Load),
		counter("memory_passes_total", "Completed rewrites of the memory stress buffer.", s.MemoryPasses.Load),
		counter("frames_total", "Frames drawn while stressing.", s.Frames.Load),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "glstress",
			Name:      "stressing",
			Help:      "1 while stressing, 0 while idle.",
		}, func() float64 {
			if active() {
				return 1
			}
			return 0
		}),
	}
}
