package race

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/logger"
)

var (
	ErrAlreadyRunning = errors.New("race: clock already running")
	ErrNotRunning     = errors.New("race: clock not running")
)

// DefaultFPS is the tick cadence used when none is configured.
const DefaultFPS = 30

// TickFunc receives every tick. It must hand the values off and return quickly;
// a slow callback delays the following ticks.
type TickFunc func(generation uint64, elapsed float64)

// Clock measures elapsed race time from a monotonic start instant and ticks
// at a fixed rate while running. Each Start opens a new generation so
// receivers can drop ticks from a run that has since been stopped.
type Clock struct {
	fps    int
	onTick TickFunc
	now    func() time.Time
	log    *zap.Logger

	mu         sync.Mutex
	running    bool
	started    time.Time
	generation uint64
	cancel     context.CancelFunc
}

type Option func(*Clock)

// WithNow replaces the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

func NewClock(fps int, onTick TickFunc, opts ...Option) *Clock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	c := &Clock{
		fps:    fps,
		onTick: onTick,
		now:    time.Now,
		log:    logger.Named("race"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) Interval() time.Duration {
	return time.Second / time.Duration(c.fps)
}

// Start begins a new run and returns its generation.
func (c *Clock) Start() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return c.generation, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.generation++
	c.running = true
	c.started = c.now()
	c.cancel = cancel

	go c.loop(ctx, c.generation)

	c.log.Info("clock started", zap.Uint64("generation", c.generation), zap.Int("fps", c.fps))
	return c.generation, nil
}

// Stop halts ticking and resets elapsed time to zero. It does not wait for an
// in-flight tick callback to return.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return ErrNotRunning
	}
	c.cancel()
	c.cancel = nil
	c.running = false
	c.started = time.Time{}

	c.log.Info("clock stopped", zap.Uint64("generation", c.generation))
	return nil
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Elapsed returns seconds since Start, or 0 when stopped.
func (c *Clock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

func (c *Clock) elapsedLocked() float64 {
	if !c.running {
		return 0
	}
	return c.now().Sub(c.started).Seconds()
}

func (c *Clock) loop(ctx context.Context, generation uint64) {
	ticker := time.NewTicker(c.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.running || c.generation != generation {
				c.mu.Unlock()
				return
			}
			elapsed := c.elapsedLocked()
			c.mu.Unlock()

			c.onTick(generation, elapsed)
		}
	}
}
