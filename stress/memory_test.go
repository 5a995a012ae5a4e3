package stress

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFill(t *testing.T) {
	var stop atomic.Bool
	buf := make([]byte, memoryChunk+300)

	require.True(t, fill(buf, &stop))
	for i, b := range buf {
		if b != byte(i%256) {
			t.Fatalf("buf[%d] = %d, want %d", i, b, i%256)
		}
	}
}

func TestFillStopped(t *testing.T) {
	var stop atomic.Bool
	stop.Store(true)
	buf := make([]byte, 1024)

	assert.False(t, fill(buf, &stop))
	assert.Equal(t, make([]byte, 1024), buf)
}

func TestNewMemoryTooSmall(t *testing.T) {
	_, err := NewMemory(MinMemorySize-1, zaptest.NewLogger(t).Sugar(), &Stats{})
	assert.Error(t, err)
}

func TestMemoryStress(t *testing.T) {
	stats := &Stats{}
	s, err := NewMemory(2*MinMemorySize, zaptest.NewLogger(t).Sugar(), stats)
	require.NoError(t, err)

	var stop atomic.Bool
	done := make(chan error)
	go func() { done <- s.Stress(&stop) }()

	require.Eventually(t, func() bool {
		return stats.MemoryPasses.Load() > 0
	}, 10*time.Second, time.Millisecond)

	stop.Store(true)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("memory stresser did not stop")
	}
}
