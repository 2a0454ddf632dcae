package race

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct {
	generation uint64
	elapsed    float64
}

// fakeTime advances by step on every read.
type fakeTime struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (f *fakeTime) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.t
	f.t = f.t.Add(f.step)
	return cur
}

func newTestClock(step time.Duration) (*Clock, chan tick) {
	ticks := make(chan tick, 1024)
	ft := &fakeTime{t: time.Unix(1_700_000_000, 0), step: step}
	c := NewClock(200, func(g uint64, e float64) {
		ticks <- tick{g, e}
	}, WithNow(ft.now))
	return c, ticks
}

func TestClockTicksWithGeneration(t *testing.T) {
	c, ticks := newTestClock(time.Second)

	gen, err := c.Start()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.True(t, c.Running())

	select {
	case tk := <-ticks:
		assert.Equal(t, uint64(1), tk.generation)
		assert.Greater(t, tk.elapsed, 0.0)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}

	require.NoError(t, c.Stop())
}

func TestClockStartTwiceFails(t *testing.T) {
	c, _ := newTestClock(time.Millisecond)

	_, err := c.Start()
	require.NoError(t, err)
	defer c.Stop()

	gen, err := c.Start()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, uint64(1), gen)
}

func TestClockStopResetsElapsed(t *testing.T) {
	c, ticks := newTestClock(time.Second)

	_, err := c.Start()
	require.NoError(t, err)
	assert.Greater(t, c.Elapsed(), 0.0)

	require.NoError(t, c.Stop())
	assert.False(t, c.Running())
	assert.Equal(t, 0.0, c.Elapsed())
	assert.ErrorIs(t, c.Stop(), ErrNotRunning)

	// Let any in-flight callback finish, then expect silence.
	time.Sleep(50 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	select {
	case tk := <-ticks:
		t.Fatalf("tick after stop: %+v", tk)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClockRestartOpensNewGeneration(t *testing.T) {
	c, ticks := newTestClock(time.Millisecond)

	_, err := c.Start()
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	gen, err := c.Start()
	require.NoError(t, err)
	defer c.Stop()
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, uint64(2), c.Generation())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case tk := <-ticks:
			if tk.generation == 2 {
				return
			}
		case <-deadline:
			t.Fatal("no tick from second generation")
		}
	}
}

func TestClockDefaultFPS(t *testing.T) {
	c := NewClock(0, func(uint64, float64) {})
	assert.Equal(t, time.Second/DefaultFPS, c.Interval())
}
