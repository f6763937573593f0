package briefing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"orga-bot/internal/calendar"
	"orga-bot/internal/chat"
	"orga-bot/internal/completion"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"
)

const (
	systemPrompt = "Tu es un assistant d'organisation. Aide-moi à structurer ma journée."
	userPrompt   = "Voici mes tâches:\n%s\nPeux-tu me proposer un plan d'action pour aujourd'hui ?"
	noTasks      = "Aucune tâche enregistrée."
	noAgenda     = "📅 Agenda indisponible."
)

// EventLister supplies today's calendar events.
type EventLister interface {
	TodaysEvents(ctx context.Context) ([]calendar.Event, error)
}

// TaskSource supplies task state.
type TaskSource interface {
	TodaysTasks(ctx context.Context) ([]models.Task, error)
	Pending(ctx context.Context) ([]models.Task, error)
}

// Options configures a Composer. Nil collaborators are skipped.
type Options struct {
	Events    EventLister
	Completer completion.Completer
	TodoFile  string
	Location  *time.Location
	Now       func() time.Time
}

// Composer assembles the daily briefing message.
type Composer struct {
	tasks TaskSource
	opts  Options
}

func NewComposer(tasks TaskSource, opts Options) *Composer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Composer{tasks: tasks, opts: opts}
}

// Compose builds agenda + task plan. Calendar and completion failures
// degrade the message; a task store failure is returned.
func (c *Composer) Compose(ctx context.Context) (string, error) {
	agenda := c.agenda(ctx)

	taskBlock, err := c.TaskBlock(ctx)
	if err != nil {
		return "", err
	}

	plan := taskBlock
	if c.opts.Completer != nil && taskBlock != noTasks {
		out, err := c.opts.Completer.Complete(ctx, systemPrompt, fmt.Sprintf(userPrompt, taskBlock))
		if err != nil {
			appLog.Error("briefing completion failed, sending raw task list", err)
		} else if out != "" {
			plan = out
		}
	}

	return agenda + "\n\n" + plan, nil
}

func (c *Composer) agenda(ctx context.Context) string {
	if c.opts.Events == nil {
		return calendar.FormatEvents(nil, c.opts.Location)
	}
	events, err := c.opts.Events.TodaysEvents(ctx)
	if err != nil {
		appLog.Error("briefing agenda unavailable", err)
		return noAgenda
	}
	return calendar.FormatEvents(events, c.opts.Location)
}

// TaskBlock renders the task part of the briefing without the model.
func (c *Composer) TaskBlock(ctx context.Context) (string, error) {
	pending, err := c.tasks.Pending(ctx)
	if err != nil {
		return "", err
	}
	today, err := c.tasks.TodaysTasks(ctx)
	if err != nil {
		return "", err
	}
	notes, err := c.todoSections()
	if err != nil {
		appLog.Error("todo file unreadable", err, "path", c.opts.TodoFile)
	}

	var sb strings.Builder
	section(&sb, "🔁 Tâches récurrentes à refaire", titles(pending))
	section(&sb, "📌 Tâches du jour", titles(today))
	section(&sb, "🔥 Priorité haute", notes.Priority)
	section(&sb, "✅ Routine quotidienne", notes.Routine)
	section(&sb, "🛠️ Projets en cours", notes.Projects)

	if sb.Len() == 0 {
		return noTasks, nil
	}
	return "**📝 Briefing du jour**\n\n" + strings.TrimRight(sb.String(), "\n"), nil
}

func (c *Composer) todoSections() (TodoSections, error) {
	if c.opts.TodoFile == "" {
		return TodoSections{}, nil
	}
	f, err := os.Open(c.opts.TodoFile)
	if errors.Is(err, fs.ErrNotExist) {
		appLog.Debug("todo file missing", "path", c.opts.TodoFile)
		return TodoSections{}, nil
	}
	if err != nil {
		return TodoSections{}, err
	}
	defer f.Close()
	return ParseTodoFile(f, c.opts.Now().In(c.opts.Location))
}

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectName != "" {
			out = append(out, fmt.Sprintf("%s (%s)", t.Title, t.ProjectName))
			continue
		}
		out = append(out, t.Title)
	}
	return out
}

func section(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("**" + title + "**\n")
	for _, it := range items {
		sb.WriteString("- " + it + "\n")
	}
	sb.WriteString("\n")
}

// Post composes the briefing and sends it to channelID. The composed
// message is returned even when sending fails.
func (c *Composer) Post(ctx context.Context, sender chat.Sender, channelID string) (string, error) {
	msg, err := c.Compose(ctx)
	if err != nil {
		return "", fmt.Errorf("compose briefing: %w", err)
	}
	if err := sender.Send(ctx, channelID, msg); err != nil {
		return msg, fmt.Errorf("send briefing: %w", err)
	}
	return msg, nil
}
