package cli

import (
	"fmt"

	"orga-bot/internal/models"
	"orga-bot/internal/tasks"

	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's tasks",
	Args:  cobra.NoArgs,
	RunE:  runToday,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var doneCmd = &cobra.Command{
	Use:   "done <title>",
	Short: "Mark every task with this title as done today",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var recurrenceCmd = &cobra.Command{
	Use:   "recurrence",
	Short: "Reactivate recurring tasks whose interval has elapsed",
	Args:  cobra.NoArgs,
	RunE:  runRecurrence,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import checklist items from the vault",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	addCmd.Flags().String("category", string(models.CategoryDaily), "Category: projet, technique, quotidien, recurrente")
	addCmd.Flags().String("project", "", "Project name")
	addCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().Int("interval", 0, "Recurrence interval in days")
}

func runToday(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Tasks.TodaysTasks(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "Aucune tâche aujourd’hui.")
		return nil
	}
	for _, t := range list {
		line := fmt.Sprintf("#%d %s [%s]", t.ID, t.Title, t.Category)
		if t.ProjectName != "" {
			line += " " + t.ProjectName
		}
		if t.DueDate != nil {
			line += " (" + *t.DueDate + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	project, _ := cmd.Flags().GetString("project")
	due, _ := cmd.Flags().GetString("due")

	in := tasks.NewTask{
		Title:       args[0],
		Category:    models.Category(category),
		ProjectName: project,
		DueDate:     due,
	}
	if cmd.Flags().Changed("interval") {
		n, _ := cmd.Flags().GetInt("interval")
		in.IntervalDays = &n
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.Tasks.Add(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "➕ Tâche ajoutée : #%d %s\n", task.ID, task.Title)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Tasks.MarkDone(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no task titled %q", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %d tâche(s) terminée(s) : %s\n", n, args[0])
	return nil
}

func runRecurrence(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.CheckRecurrence(cmd.Context())
	out := cmd.OutOrStdout()
	for _, t := range res.Reactivated {
		fmt.Fprintf(out, "🔄 %s\n", t.Title)
	}
	fmt.Fprintf(out, "checked=%d reactivated=%d already_pending=%d failed=%d\n",
		res.Checked, len(res.Reactivated), res.AlreadyPending, res.Failed)
	return err
}

func runImport(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ImportVault(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "seen=%d inserted=%d skipped=%d orphaned=%d\n",
		res.Seen, res.Inserted, res.Skipped, res.Orphaned)
	return err
}
