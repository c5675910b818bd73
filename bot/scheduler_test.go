package bot

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunDueRunsInOrder(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	var order []string
	s.At(base.Add(time.Minute), func() { order = append(order, "later") })
	s.At(base.Add(-time.Minute), func() { order = append(order, "second") })
	s.At(base.Add(-time.Hour), func() { order = append(order, "first") })
	s.At(base, func() { order = append(order, "third") })

	s.RunDue()

	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, 1, s.Pending())

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	s.RunDue()
	assert.Equal(t, []string{"first", "second", "third", "later"}, order)
	assert.Zero(t, s.Pending())
}

func TestPanickingJobDoesNotStopOthers(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	ran := false
	s.At(time.Now().Add(-time.Second), func() { panic("boom") })
	s.At(time.Now().Add(-time.Second), func() { ran = true })

	assert.NotPanics(t, s.RunDue)
	assert.True(t, ran)
}

func TestLoopRunsJobsUntilStopped(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.tick = 5 * time.Millisecond

	var fired atomic.Int32
	s.At(time.Now(), func() { fired.Add(1) })
	s.Start()
	s.Start()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	s.At(time.Now(), func() { fired.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}
