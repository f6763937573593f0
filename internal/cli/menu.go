package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"orga-bot/internal/models"
	"orga-bot/internal/recurrence"
	"orga-bot/internal/tasks"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive task menu",
	RunE:  runMenu,
}

// TaskManager is the task surface driven by the menu.
type TaskManager interface {
	TodaysTitles(ctx context.Context) ([]string, error)
	Add(ctx context.Context, in tasks.NewTask) (*models.Task, error)
	MarkDone(ctx context.Context, title string) (int64, error)
}

// RecurrenceChecker runs one recurrence pass.
type RecurrenceChecker interface {
	CheckRecurrence(ctx context.Context) (recurrence.Result, error)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return RunMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.Tasks, a)
}

// RunMenu loops over the numbered menu until the user quits or input ends.
// Operation failures are reported and the menu is shown again.
func RunMenu(ctx context.Context, in io.Reader, out io.Writer, svc TaskManager, rec RecurrenceChecker) error {
	m := &menu{in: bufio.NewScanner(in), out: out, svc: svc, rec: rec}
	fmt.Fprintln(out, "📅 Gestionnaire de tâches")

	for {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "1️⃣ Voir les tâches du jour")
		fmt.Fprintln(out, "2️⃣ Ajouter une tâche")
		fmt.Fprintln(out, "3️⃣ Marquer une tâche comme faite")
		fmt.Fprintln(out, "4️⃣ Vérifier les tâches récurrentes")
		fmt.Fprintln(out, "5️⃣ Quitter")

		choice, ok := m.prompt("👉 Choix : ")
		if !ok {
			return m.in.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch choice {
		case "1":
			err = m.today(ctx)
		case "2":
			err = m.add(ctx)
		case "3":
			err = m.done(ctx)
		case "4":
			err = m.recurrence(ctx)
		case "5":
			fmt.Fprintln(out, "👋 Bye !")
			return nil
		default:
			fmt.Fprintln(out, "⚠️ Choix invalide, essaie encore.")
		}
		if errors.Is(err, io.EOF) {
			return m.in.Err()
		}
		if err != nil {
			fmt.Fprintf(out, "❌ Oups, ça n’a pas marché : %v\n", err)
		}
	}
}

type menu struct {
	in  *bufio.Scanner
	out io.Writer
	svc TaskManager
	rec RecurrenceChecker
}

func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) today(ctx context.Context) error {
	titles, err := m.svc.TodaysTitles(ctx)
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		fmt.Fprintln(m.out, "📌 Tâches du jour : Aucune tâche aujourd’hui.")
		return nil
	}
	fmt.Fprintln(m.out, "📌 Tâches du jour :")
	for _, t := range titles {
		fmt.Fprintf(m.out, "  - %s\n", t)
	}
	return nil
}

func (m *menu) add(ctx context.Context) error {
	var in tasks.NewTask
	var ok bool
	if in.Title, ok = m.prompt("📝 Nom de la tâche : "); !ok {
		return io.EOF
	}
	category, ok := m.prompt("📂 Catégorie (projet, technique, quotidien, recurrente) : ")
	if !ok {
		return io.EOF
	}
	in.Category = models.Category(category)
	if in.DueDate, ok = m.prompt("📅 Date d’échéance (YYYY-MM-DD ou enter pour aucune) : "); !ok {
		return io.EOF
	}
	interval, ok := m.prompt("🔁 Intervalle (si récurrente, nombre de jours) : ")
	if !ok {
		return io.EOF
	}
	if interval != "" {
		n, err := strconv.Atoi(interval)
		if err != nil {
			return fmt.Errorf("%w: %q", tasks.ErrInvalidInterval, interval)
		}
		in.IntervalDays = &n
	}

	task, err := m.svc.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "➕ Tâche ajoutée : %s\n", task.Title)
	return nil
}

func (m *menu) done(ctx context.Context) error {
	title, ok := m.prompt("✅ Tâche à marquer comme faite : ")
	if !ok {
		return io.EOF
	}
	n, err := m.svc.MarkDone(ctx, title)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(m.out, "🤷 Aucune tâche nommée %q.\n", title)
		return nil
	}
	fmt.Fprintf(m.out, "✅ Tâche terminée : %s\n", title)
	return nil
}

func (m *menu) recurrence(ctx context.Context) error {
	res, err := m.rec.CheckRecurrence(ctx)
	for _, t := range res.Reactivated {
		fmt.Fprintf(m.out, "🔄 Tâche récurrente à refaire : %s\n", t.Title)
	}
	if err != nil {
		return err
	}
	if len(res.Reactivated) == 0 {
		fmt.Fprintln(m.out, "🔄 Aucune tâche récurrente à réactiver.")
	}
	return nil
}
