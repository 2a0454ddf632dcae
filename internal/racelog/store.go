package racelog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swimpace/backend/internal/models"
)

var ErrRunNotFound = errors.New("race run not found")

// Store persists race runs.
type Store interface {
	StartRun(ctx context.Context, run models.RaceRun) error
	FinishRun(ctx context.Context, id uuid.UUID, stoppedAt time.Time, elapsed float64, completed bool) error
	RecentRuns(ctx context.Context, limit int) ([]models.RaceRun, error)
}

const runColumns = `id, generation, race_distance, qualifying_time, pool_length, units, started_at, stopped_at, elapsed_seconds, completed`

// PostgresStore keeps runs in the race_runs table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) StartRun(ctx context.Context, run models.RaceRun) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO race_runs (`+runColumns+`)
		VALUES (:id, :generation, :race_distance, :qualifying_time, :pool_length, :units, :started_at, :stopped_at, :elapsed_seconds, :completed)`, run)
	if err != nil {
		return fmt.Errorf("insert race run: %w", err)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, id uuid.UUID, stoppedAt time.Time, elapsed float64, completed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE race_runs SET stopped_at=$2, elapsed_seconds=$3, completed=$4 WHERE id=$1 AND stopped_at IS NULL`,
		id, stoppedAt, elapsed, completed)
	if err != nil {
		return fmt.Errorf("finish race run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]models.RaceRun, error) {
	runs := []models.RaceRun{}
	if err := s.db.SelectContext(ctx, &runs,
		`SELECT `+runColumns+` FROM race_runs ORDER BY started_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("select race runs: %w", err)
	}
	return runs, nil
}

// MemoryStore is the history store used when no database is configured. It
// keeps at most max runs, dropping the oldest.
type MemoryStore struct {
	mu   sync.Mutex
	max  int
	runs []models.RaceRun
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 100
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) StartRun(_ context.Context, run models.RaceRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > s.max {
		s.runs = append([]models.RaceRun(nil), s.runs[len(s.runs)-s.max:]...)
	}
	return nil
}

func (s *MemoryStore) FinishRun(_ context.Context, id uuid.UUID, stoppedAt time.Time, elapsed float64, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		r := &s.runs[i]
		if r.ID != id || r.StoppedAt.Valid {
			continue
		}
		r.StoppedAt.Time, r.StoppedAt.Valid = stoppedAt, true
		r.ElapsedSeconds.Float64, r.ElapsedSeconds.Valid = elapsed, true
		r.Completed = completed
		return nil
	}
	return ErrRunNotFound
}

func (s *MemoryStore) RecentRuns(_ context.Context, limit int) ([]models.RaceRun, error) {
	s.mu.Lock()
	out := append([]models.RaceRun(nil), s.runs...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
