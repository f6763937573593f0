package briefing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"orga-bot/internal/calendar"
	"orga-bot/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeTasks struct {
	today, pending []models.Task
	err            error
}

func (f fakeTasks) TodaysTasks(context.Context) ([]models.Task, error) { return f.today, f.err }
func (f fakeTasks) Pending(context.Context) ([]models.Task, error)     { return f.pending, f.err }

type fakeEvents struct {
	events []calendar.Event
	err    error
}

func (f fakeEvents) TodaysEvents(context.Context) ([]calendar.Event, error) { return f.events, f.err }

type fakeCompleter struct {
	gotUser string
	out     string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.gotUser = user
	return f.out, f.err
}

type fakeSender struct {
	channel, text string
}

func (f *fakeSender) Send(_ context.Context, channel, text string) error {
	f.channel, f.text = channel, text
	return nil
}

var fixedNow = func() time.Time { return time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC) }

func TestCompose_WithoutModel(t *testing.T) {
	tasks := fakeTasks{
		today:   []models.Task{{Title: "Design API", ProjectName: "Alpha"}, {Title: "Buy milk"}},
		pending: []models.Task{{Title: "Water plants"}},
	}
	c := NewComposer(tasks, Options{
		Events:   fakeEvents{events: []calendar.Event{{Summary: "Standup", Start: time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)}}},
		Location: time.UTC,
		Now:      fixedNow,
	})

	msg, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.Contains(t, msg, "- Standup (09:30)")
	require.Contains(t, msg, "**🔁 Tâches récurrentes à refaire**\n- Water plants")
	require.Contains(t, msg, "- Design API (Alpha)\n- Buy milk")
}

func TestCompose_ModelReplacesTaskBlock(t *testing.T) {
	llm := &fakeCompleter{out: "1. Faire le standup"}
	c := NewComposer(fakeTasks{today: []models.Task{{Title: "Buy milk"}}}, Options{Completer: llm, Now: fixedNow})

	msg, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(msg, "1. Faire le standup"))
	require.NotContains(t, msg, "Buy milk")
	require.Contains(t, llm.gotUser, "- Buy milk")
}

func TestCompose_DegradesOnCollaboratorFailure(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("quota")}
	c := NewComposer(fakeTasks{today: []models.Task{{Title: "Buy milk"}}}, Options{
		Events:    fakeEvents{err: errors.New("403")},
		Completer: llm,
		Now:       fixedNow,
	})

	msg, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.Contains(t, msg, noAgenda)
	require.Contains(t, msg, "- Buy milk")
}

func TestCompose_StoreFailureIsReturned(t *testing.T) {
	c := NewComposer(fakeTasks{err: errors.New("db down")}, Options{Now: fixedNow})
	_, err := c.Compose(context.Background())
	require.Error(t, err)
}

func TestCompose_NoTasksSkipsModel(t *testing.T) {
	llm := &fakeCompleter{out: "should not be used"}
	c := NewComposer(fakeTasks{}, Options{Completer: llm, Now: fixedNow})

	msg, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(msg, noTasks))
	require.Empty(t, llm.gotUser)
}

func TestTaskBlock_IncludesTodoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] **Payer une facture** (📅 Avant le 03/03)\n"), 0o644))

	c := NewComposer(fakeTasks{}, Options{TodoFile: path, Now: fixedNow, Location: time.UTC})
	block, err := c.TaskBlock(context.Background())
	require.NoError(t, err)
	require.Contains(t, block, "🚨 **URGENT** → Payer une facture")
}

func TestPost_SendsComposedMessage(t *testing.T) {
	sender := &fakeSender{}
	c := NewComposer(fakeTasks{today: []models.Task{{Title: "Buy milk"}}}, Options{Now: fixedNow})

	msg, err := c.Post(context.Background(), sender, "42")
	require.NoError(t, err)
	require.Equal(t, msg, sender.text)
	require.Equal(t, "42", sender.channel)
	require.Contains(t, sender.text, "Buy milk")
}

type brokenSender struct{}

func (brokenSender) Send(context.Context, string, string) error { return errors.New("gateway 502") }

func TestPost_SendFailureKeepsMessage(t *testing.T) {
	c := NewComposer(fakeTasks{today: []models.Task{{Title: "Buy milk"}}}, Options{Now: fixedNow})

	msg, err := c.Post(context.Background(), brokenSender{}, "42")
	require.Error(t, err)
	require.Contains(t, msg, "Buy milk")
}
