package stress

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	stats := &Stats{}
	stats.CPURounds.Add(3)
	stats.MemoryPasses.Add(2)
	stats.Frames.Add(1)

	active := false
	collectors := stats.Collectors(func() bool { return active })
	require.Len(t, collectors, 4)

	assert.Equal(t, 3.0, testutil.ToFloat64(collectors[0]))
	assert.Equal(t, 2.0, testutil.ToFloat64(collectors[1]))
	assert.Equal(t, 1.0, testutil.ToFloat64(collectors[2]))
	assert.Equal(t, 0.0, testutil.ToFloat64(collectors[3]))

	active = true
	stats.Frames.Add(9)
	assert.Equal(t, 10.0, testutil.ToFloat64(collectors[2]))
	assert.Equal(t, 1.0, testutil.ToFloat64(collectors[3]))

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(collectors...)
	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP glstress_stressing 1 while stressing, 0 while idle.
# TYPE glstress_stressing gauge
glstress_stressing 1
`), "glstress_stressing")
	assert.NoError(t, err)
}
