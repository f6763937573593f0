package calendar

import (
	"fmt"
	"time"

	"orga-bot/internal/models"

	ical "github.com/arran4/golang-ical"
)

// ExportTasks renders tasks with a due date as all-day iCalendar events.
// Recurring tasks repeat every interval_days days from their due date.
func ExportTasks(tasks []models.Task, now time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//orga-bot//Tasks//FR")

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due, err := models.ParseDate(*t.DueDate)
		if err != nil {
			return "", fmt.Errorf("task %d: %w", t.ID, err)
		}

		ev := cal.AddEvent(fmt.Sprintf("task-%d@orga-bot", t.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(t.Title)
		ev.SetAllDayStartAt(due)
		ev.SetAllDayEndAt(due.AddDate(0, 0, 1))
		ev.AddProperty(ical.ComponentPropertyCategories, string(t.Category))
		if t.ProjectName != "" {
			ev.SetDescription("Projet : " + t.ProjectName)
		}
		if t.IntervalDays != nil && *t.IntervalDays > 0 {
			ev.AddRrule(fmt.Sprintf("FREQ=DAILY;INTERVAL=%d", *t.IntervalDays))
		}
	}
	return cal.Serialize(), nil
}
