package racelog

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swimpace/backend/internal/models"
	"github.com/swimpace/backend/internal/pace"
)

func TestRecorderWritesRunInOrder(t *testing.T) {
	store := NewMemoryStore(10)
	rec := NewRecorder(store)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return base }

	cfg := pace.Defaults()
	rec.RaceStarted(1, cfg)
	rec.now = func() time.Time { return base.Add(101 * time.Second) }
	rec.RaceFinished(1, 100.5, true)
	rec.Close()

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	want := models.RaceRun{
		Generation:     1,
		RaceDistance:   cfg.RaceDistance,
		QualifyingTime: cfg.QualifyingTime,
		PoolLength:     cfg.PoolLength,
		Units:          cfg.Units,
		StartedAt:      base,
		Completed:      true,
	}
	want.StoppedAt.Time, want.StoppedAt.Valid = base.Add(101*time.Second), true
	want.ElapsedSeconds.Float64, want.ElapsedSeconds.Valid = 100.5, true

	if diff := cmp.Diff(want, runs[0], cmpopts.IgnoreFields(models.RaceRun{}, "ID")); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
	assert.NotEqual(t, uuid.Nil, runs[0].ID)
}

func TestRecorderIgnoresUnknownGeneration(t *testing.T) {
	store := NewMemoryStore(10)
	rec := NewRecorder(store)
	rec.RaceFinished(7, 12, false)
	rec.Close()

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecorderFinishOnlyOnce(t *testing.T) {
	store := NewMemoryStore(10)
	rec := NewRecorder(store)
	rec.RaceStarted(3, pace.Defaults())
	rec.RaceFinished(3, 40, false)
	rec.RaceFinished(3, 55, true)
	rec.Close()

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Completed)
	assert.Equal(t, 40.0, runs[0].ElapsedSeconds.Float64)
}

func TestMemoryStoreRecentRuns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		id := uuid.New()
		ids = append(ids, id)
		require.NoError(t, store.StartRun(ctx, models.RaceRun{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[3], runs[0].ID)
	assert.Equal(t, ids[2], runs[1].ID)

	all, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "oldest run evicted")

	assert.ErrorIs(t, store.FinishRun(ctx, ids[0], base, 1, false), ErrRunNotFound)
	require.NoError(t, store.FinishRun(ctx, ids[1], base, 1, false))
	assert.ErrorIs(t, store.FinishRun(ctx, ids[1], base, 2, true), ErrRunNotFound)
}
