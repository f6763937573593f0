package briefing

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"orga-bot/internal/models"
)

// TodoSections groups the lines of a hand-kept todo note.
type TodoSections struct {
	Priority []string
	Routine  []string
	Projects []string
}

var (
	deadlineItem = regexp.MustCompile(`^- \[ \] \*\*(.+?)\*\* \(📅 (.+?)\)`)
	routineItem  = regexp.MustCompile(`^- \[ \] \*\*(.+?)\*\* \(⏳ (.+?)\)`)
	projectItem  = regexp.MustCompile(`^- \[ \] \*\*(.+?)\*\*`)
	dayMonth     = regexp.MustCompile(`(\d{2})/(\d{2})`)
)

// ParseTodoFile sorts bold checklist items into sections:
//
//	- [ ] **Pay the bill** (📅 Avant le 03/03)   priority, URGENT once past
//	- [ ] **Look for work** (⏳ 1x par jour)      daily routine
//	- [ ] **Tidy Docker scripts**                ongoing project
func ParseTodoFile(r io.Reader, today time.Time) (TodoSections, error) {
	var s TodoSections
	today = models.DateOnly(today)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if m := deadlineItem.FindStringSubmatch(line); m != nil {
			task, deadline := m[1], m[2]
			if d, ok := parseDeadline(deadline, today.Year()); ok && d.Before(today) {
				task = fmt.Sprintf("🚨 **URGENT** → %s (⚠️ %s)", task, deadline)
			}
			s.Priority = append(s.Priority, task)
			continue
		}
		if m := routineItem.FindStringSubmatch(line); m != nil {
			s.Routine = append(s.Routine, fmt.Sprintf("%s (%s)", m[1], m[2]))
			continue
		}
		if m := projectItem.FindStringSubmatch(line); m != nil {
			s.Projects = append(s.Projects, m[1])
		}
	}
	return s, sc.Err()
}

// parseDeadline reads the first dd/mm in text as a date of year.
func parseDeadline(text string, year int) (time.Time, bool) {
	m := dayMonth.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}
