package cli

import (
	"fmt"

	"orga-bot/internal/calendar"

	"github.com/spf13/cobra"
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Compose and post the daily briefing",
	Args:  cobra.NoArgs,
	RunE:  runBriefing,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List today's remaining calendar events",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

var eventAddCmd = &cobra.Command{
	Use:   "event-add <summary> <start>",
	Short: "Add a calendar event (start as YYYY-MM-DDTHH:MM)",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventAdd,
}

func init() {
	briefingCmd.Flags().Bool("dry-run", false, "Print the briefing instead of posting it")
	eventAddCmd.Flags().Int("duration", 0, "Duration in minutes (default from config)")
}

func runBriefing(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if dryRun {
		msg, err := a.Composer(cmd.Context()).Compose(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}
	_, err = a.PostBriefing(cmd.Context())
	return err
}

func runEvents(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cal, err := a.Calendar(cmd.Context())
	if err != nil {
		return err
	}
	events, err := cal.TodaysEvents(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), calendar.FormatEvents(events, a.Location))
	return nil
}

func runEventAdd(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetInt("duration")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	msg, err := a.AddEvent(cmd.Context(), args[0], args[1], duration)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
