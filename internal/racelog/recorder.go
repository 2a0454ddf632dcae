package racelog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/models"
	"github.com/swimpace/backend/internal/pace"
)

const (
	queueSize    = 64
	writeTimeout = 5 * time.Second
)

type job func(ctx context.Context) error

// Recorder turns session race events into Store writes. Events are queued and
// written in order by a single worker so the race loop never waits on I/O.
type Recorder struct {
	store Store
	now   func() time.Time
	log   *zap.Logger

	mu   sync.Mutex
	runs map[uint64]uuid.UUID

	jobs chan job
	done chan struct{}
	once sync.Once
}

func NewRecorder(store Store) *Recorder {
	r := &Recorder{
		store: store,
		now:   time.Now,
		log:   logger.Named("racelog"),
		runs:  make(map[uint64]uuid.UUID),
		jobs:  make(chan job, queueSize),
		done:  make(chan struct{}),
	}
	go r.worker()
	return r
}

func (r *Recorder) worker() {
	defer close(r.done)
	for j := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := j(ctx); err != nil {
			r.log.Warn("race log write failed", logger.ErrorField(err))
		}
		cancel()
	}
}

func (r *Recorder) enqueue(j job) {
	select {
	case r.jobs <- j:
	default:
		r.log.Warn("race log queue full, dropping write")
	}
}

func (r *Recorder) RaceStarted(generation uint64, cfg pace.Config) {
	id := uuid.New()
	r.mu.Lock()
	r.runs[generation] = id
	r.mu.Unlock()

	run := models.RaceRun{
		ID:             id,
		Generation:     int64(generation),
		RaceDistance:   cfg.RaceDistance,
		QualifyingTime: cfg.QualifyingTime,
		PoolLength:     cfg.PoolLength,
		Units:          cfg.Units,
		StartedAt:      r.now().UTC(),
	}
	r.log.Info("race started", zap.Uint64("generation", generation), zap.String("run_id", id.String()))
	r.enqueue(func(ctx context.Context) error { return r.store.StartRun(ctx, run) })
}

func (r *Recorder) RaceFinished(generation uint64, elapsed float64, completed bool) {
	r.mu.Lock()
	id, ok := r.runs[generation]
	delete(r.runs, generation)
	r.mu.Unlock()
	if !ok {
		r.log.Debug("finish for unknown run", zap.Uint64("generation", generation))
		return
	}

	stoppedAt := r.now().UTC()
	r.log.Info("race finished",
		zap.Uint64("generation", generation),
		zap.Float64("elapsed", elapsed),
		zap.Bool("completed", completed),
	)
	r.enqueue(func(ctx context.Context) error {
		return r.store.FinishRun(ctx, id, stoppedAt, elapsed, completed)
	})
}

// Close drains pending writes and stops the worker.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.jobs) })
	<-r.done
}
