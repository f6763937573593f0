package vault

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"orga-bot/internal/models"
)

const (
	objectivesDir = "Objectives"
	projectsDir   = "Projects"
)

// Item is one task tuple found in the vault.
type Item struct {
	Title       string
	Category    models.Category
	ProjectName string
	// Parent is the title of the enclosing top-level item; empty for
	// top-level items.
	Parent string
	Path   string
	Line   int
}

// Scanner walks a note vault for checklist items.
type Scanner struct {
	root string
}

func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Items lazily yields every item under the vault root, in lexical file
// order then line order. Each call re-reads the file system. After a
// non-nil error the sequence stops.
func (s *Scanner) Items() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		stopped := false
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
				return nil
			}
			dir := filepath.Dir(path)
			segs := s.segments(dir)
			if !contains(segs, objectivesDir) {
				return nil
			}
			category, project := classifyDir(dir, segs)

			cont, err := readFile(path, func(ev Event) bool {
				return yield(Item{
					Title:       ev.Title,
					Category:    category,
					ProjectName: project,
					Parent:      ev.Parent,
					Path:        path,
					Line:        ev.Line,
				}, nil)
			})
			if err != nil {
				return err
			}
			if !cont {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Item{}, fmt.Errorf("scan vault %s: %w", s.root, err))
		}
	}
}

// Scan collects Items into a slice.
func (s *Scanner) Scan() ([]Item, error) {
	var items []Item
	for it, err := range s.Items() {
		if err != nil {
			return items, err
		}
		items = append(items, it)
	}
	return items, nil
}

// segments splits the cleaned absolute path of dir, so a vault root that
// is itself inside (or is) an Objectives folder still qualifies.
func (s *Scanner) segments(dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	return strings.Split(filepath.ToSlash(abs), "/")
}

// classifyDir derives category and project from a directory path. Under a
// Projects folder the project is the folder right below it; otherwise it
// is the name of the directory's parent.
func classifyDir(dir string, segs []string) (models.Category, string) {
	for i, seg := range segs {
		if seg != projectsDir {
			continue
		}
		if i+1 < len(segs) {
			return models.CategoryProject, segs[i+1]
		}
		return models.CategoryProject, filepath.Base(filepath.Dir(dir))
	}
	return models.CategoryDaily, filepath.Base(filepath.Dir(dir))
}

func readFile(path string, emit func(Event) bool) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return Parse(f, emit)
}

// Parse feeds r line by line through a fresh parser. It returns false if
// emit asked to stop.
func Parse(r io.Reader, emit func(Event) bool) (bool, error) {
	var p fileParser
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if ev, ok := p.Feed(sc.Text()); ok {
			if !emit(ev) {
				return false, nil
			}
		}
	}
	return true, sc.Err()
}

func contains(segs []string, want string) bool {
	for _, s := range segs {
		if s == want {
			return true
		}
	}
	return false
}
