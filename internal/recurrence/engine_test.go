package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"orga-bot/internal/models"
	"orga-bot/internal/store"
	"orga-bot/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d.Add(9 * time.Hour)
}

func TestDue(t *testing.T) {
	weekly := models.Task{IntervalDays: models.Ptr(7), LastDone: models.Ptr("2025-01-01")}

	due, err := Due(weekly, day("2025-01-07"))
	require.NoError(t, err)
	require.False(t, due)

	due, err = Due(weekly, day("2025-01-08"))
	require.NoError(t, err)
	require.True(t, due)

	due, err = Due(weekly, day("2025-03-01"))
	require.NoError(t, err)
	require.True(t, due)

	never := models.Task{IntervalDays: models.Ptr(3)}
	due, err = Due(never, day("2025-01-01"))
	require.NoError(t, err)
	require.True(t, due)

	oneOff := models.Task{LastDone: models.Ptr("2020-01-01")}
	due, err = Due(oneOff, day("2025-01-01"))
	require.NoError(t, err)
	require.False(t, due)

	_, err = Due(models.Task{IntervalDays: models.Ptr(0)}, day("2025-01-01"))
	require.Error(t, err)

	_, err = Due(models.Task{IntervalDays: models.Ptr(1), LastDone: models.Ptr("yesterday")}, day("2025-01-01"))
	require.Error(t, err)
}

func TestDue_PropertyMatchesDateArithmetic(t *testing.T) {
	base := day("2025-01-01")
	for n := 1; n <= 30; n++ {
		task := models.Task{IntervalDays: models.Ptr(n), LastDone: models.Ptr("2025-01-01")}
		for offset := 0; offset <= 40; offset++ {
			today := base.AddDate(0, 0, offset)
			due, err := Due(task, today)
			require.NoError(t, err)
			require.Equal(t, offset >= n, due, "interval=%d offset=%d", n, offset)
		}
	}
}

func newEngine(t *testing.T, today string) (*Engine, *store.Store) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := store.New(db)
	return New(s, func() time.Time { return day(today) }), s
}

func TestRun_WeeklyScenario(t *testing.T) {
	ctx := context.Background()

	e, s := newEngine(t, "2025-01-07")
	task := &models.Task{Title: "Water plants", Category: models.CategoryRecurring, Status: models.StatusDone, IntervalDays: models.Ptr(7), LastDone: models.Ptr("2025-01-01")}
	require.NoError(t, s.Create(ctx, task))

	res, err := e.Run(ctx)
	require.NoError(t, err)
	require.Empty(t, res.Reactivated)
	got, _ := s.Get(ctx, task.ID)
	require.Equal(t, models.StatusDone, got.Status)

	e.now = func() time.Time { return day("2025-01-08") }
	res, err = e.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res.Reactivated, 1)
	got, _ = s.Get(ctx, task.ID)
	require.Equal(t, models.StatusPending, got.Status)

	// Same day again: nothing changes.
	res, err = e.Run(ctx)
	require.NoError(t, err)
	require.Empty(t, res.Reactivated)
	require.Equal(t, 1, res.AlreadyPending)
	got, _ = s.Get(ctx, task.ID)
	require.Equal(t, models.StatusPending, got.Status)
}

func TestRun_IgnoresNonRecurringAndReportsBadRows(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t, "2025-01-08")

	require.NoError(t, s.Create(ctx, &models.Task{Title: "one-off", Category: models.CategoryDaily, Status: models.StatusDone, LastDone: models.Ptr("2020-01-01")}))
	never := &models.Task{Title: "never done", Category: models.CategoryRecurring, Status: models.StatusTodo, IntervalDays: models.Ptr(2)}
	require.NoError(t, s.Create(ctx, never))
	require.NoError(t, s.Create(ctx, &models.Task{Title: "broken", Category: models.CategoryRecurring, Status: models.StatusDone, IntervalDays: models.Ptr(1), LastDone: models.Ptr("08/01/2025")}))

	res, err := e.Run(ctx)
	require.Error(t, err)
	require.Equal(t, 2, res.Checked)
	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Reactivated, 1)
	require.Equal(t, never.ID, res.Reactivated[0].ID)

	oneOff, err := s.ListByStatus(ctx, models.StatusDone)
	require.NoError(t, err)
	require.Len(t, oneOff, 2)
}

func TestRun_WriteFailureDoesNotStopPass(t *testing.T) {
	ctx := context.Background()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := store.New(db)
	e := New(s, func() time.Time { return day("2025-01-08") })

	var ids []uint
	for _, title := range []string{"first", "second", "third"} {
		task := &models.Task{Title: title, Category: models.CategoryRecurring, Status: models.StatusDone, IntervalDays: models.Ptr(7), LastDone: models.Ptr("2025-01-01")}
		require.NoError(t, s.Create(ctx, task))
		ids = append(ids, task.ID)
	}

	// Reject the first status write of the pass.
	diskFull := errors.New("disk full")
	updates := 0
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_first_update", func(tx *gorm.DB) {
		updates++
		if updates == 1 {
			_ = tx.AddError(diskFull)
		}
	}))

	res, err := e.Run(ctx)
	require.ErrorIs(t, err, diskFull)
	require.Equal(t, 3, res.Checked)
	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Reactivated, 2)
	require.Equal(t, ids[1], res.Reactivated[0].ID)
	require.Equal(t, ids[2], res.Reactivated[1].ID)

	first, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, first.Status)
	for _, id := range ids[1:] {
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, models.StatusPending, got.Status)
	}
}
