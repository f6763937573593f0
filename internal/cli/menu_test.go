package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"orga-bot/internal/models"
	"orga-bot/internal/recurrence"
	"orga-bot/internal/store"
	"orga-bot/internal/tasks"
	"orga-bot/internal/testutil"

	"github.com/stretchr/testify/require"
)

type menuRecurrence struct {
	engine *recurrence.Engine
}

func (m menuRecurrence) CheckRecurrence(ctx context.Context) (recurrence.Result, error) {
	return m.engine.Run(ctx)
}

func newMenuDeps(t *testing.T) (*tasks.Service, menuRecurrence, *store.Store) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	st := store.New(db)
	now := func() time.Time { return time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC) }
	return tasks.NewService(st, now), menuRecurrence{engine: recurrence.New(st, now)}, st
}

func runMenuWith(t *testing.T, input string) (string, *store.Store) {
	t.Helper()
	svc, rec, st := newMenuDeps(t)
	var out bytes.Buffer
	require.NoError(t, RunMenu(context.Background(), strings.NewReader(input), &out, svc, rec))
	return out.String(), st
}

func TestRunMenu_AddListDoneQuit(t *testing.T) {
	input := strings.Join([]string{
		"2", "Buy milk", "quotidien", "", "",
		"1",
		"3", "Buy milk",
		"1",
		"5",
	}, "\n") + "\n"

	out, st := runMenuWith(t, input)
	require.Contains(t, out, "➕ Tâche ajoutée : Buy milk")
	require.Contains(t, out, "  - Buy milk")
	require.Contains(t, out, "✅ Tâche terminée : Buy milk")
	require.Contains(t, out, "Aucune tâche aujourd’hui.")
	require.True(t, strings.HasSuffix(out, "👋 Bye !\n"))

	done, err := st.ListByStatus(context.Background(), models.StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, "2025-01-08", *done[0].LastDone)
}

func TestRunMenu_ErrorsLoopBack(t *testing.T) {
	input := strings.Join([]string{
		"2", "Thing", "bogus", "", "",
		"2", "Thing", "projet", "", "abc",
		"9",
		"5",
	}, "\n") + "\n"

	out, st := runMenuWith(t, input)
	require.Equal(t, 2, strings.Count(out, "❌ Oups"))
	require.Contains(t, out, "⚠️ Choix invalide, essaie encore.")
	require.Contains(t, out, "👋 Bye !")

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRunMenu_RecurrenceCheck(t *testing.T) {
	svc, rec, st := newMenuDeps(t)
	last := "2025-01-01"
	require.NoError(t, st.Create(context.Background(), &models.Task{
		Title: "Water plants", Category: models.CategoryRecurring, Status: models.StatusDone,
		IntervalDays: models.Ptr(7), LastDone: &last,
	}))

	var out bytes.Buffer
	require.NoError(t, RunMenu(context.Background(), strings.NewReader("4\n5\n"), &out, svc, rec))
	require.Contains(t, out.String(), "🔄 Tâche récurrente à refaire : Water plants")
}

func TestRunMenu_EOFQuits(t *testing.T) {
	out, _ := runMenuWith(t, "1\n")
	require.NotContains(t, out, "Bye")
}

type failingTasks struct{ *tasks.Service }

func (failingTasks) TodaysTitles(context.Context) ([]string, error) {
	return nil, errors.New("database is locked")
}

func TestRunMenu_StoreFailureIsFriendly(t *testing.T) {
	_, rec, _ := newMenuDeps(t)
	var out bytes.Buffer
	require.NoError(t, RunMenu(context.Background(), strings.NewReader("1\n5\n"), &out, failingTasks{}, rec))
	require.Contains(t, out.String(), "❌ Oups, ça n’a pas marché : database is locked")
}
