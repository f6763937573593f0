package vault

import (
	"regexp"
	"strings"
)

// LineKind classifies one markdown line.
type LineKind int

const (
	KindOther LineKind = iota
	// KindTask is an unindented "- [ ] text" item.
	KindTask
	// KindSubtask is an indented "- [ ] text" or "* [ ] text" item.
	KindSubtask
	// KindBlankTask is an unindented item with only whitespace as text. It
	// is not imported but ends the current parent.
	KindBlankTask
)

func (k LineKind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindSubtask:
		return "subtask"
	case KindBlankTask:
		return "blank task"
	default:
		return "other"
	}
}

var (
	taskLine    = regexp.MustCompile(`^-\s\[\s\]\s(.+)`)
	subtaskLine = regexp.MustCompile(`^\s+[-*]\s\[\s\]\s(.+)`)
)

// Classify returns the kind of line and, for checklist items, the trimmed
// item text. A blank unindented item is KindBlankTask; a blank indented
// item is KindOther.
func Classify(line string) (LineKind, string) {
	line = strings.TrimRight(line, "\r\n")
	if m := taskLine.FindStringSubmatch(line); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return KindTask, title
		}
		return KindBlankTask, ""
	}
	if m := subtaskLine.FindStringSubmatch(line); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return KindSubtask, title
		}
	}
	return KindOther, ""
}

// Event is a checklist item read from one file. Parent is empty for
// top-level items.
type Event struct {
	Kind   LineKind
	Title  string
	Parent string
	Line   int
}

// fileParser tracks the current top-level item of one file.
type fileParser struct {
	parent string
	line   int
}

// Feed consumes one line. ok is false for lines that produce no event,
// including sub-items with no current top-level item.
func (p *fileParser) Feed(line string) (ev Event, ok bool) {
	p.line++
	kind, title := Classify(line)
	switch kind {
	case KindTask:
		p.parent = title
		return Event{Kind: KindTask, Title: title, Line: p.line}, true
	case KindBlankTask:
		p.parent = ""
		return Event{}, false
	case KindSubtask:
		if p.parent == "" {
			return Event{}, false
		}
		return Event{Kind: KindSubtask, Title: title, Parent: p.parent, Line: p.line}, true
	default:
		return Event{}, false
	}
}
