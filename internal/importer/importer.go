package importer

import (
	"context"
	"fmt"
	"iter"

	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"
	"orga-bot/internal/store"
	"orga-bot/internal/vault"
)

// Options tunes parent resolution.
type Options struct {
	// ResolveExistingParents looks a sub-task's parent up in the store when
	// the parent was not inserted during this run (typically because it was
	// imported by an earlier run). When false such sub-tasks are inserted
	// without a parent.
	ResolveExistingParents bool
}

// Result counts what one run did.
type Result struct {
	Seen     int `json:"seen"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Orphaned int `json:"orphaned"`
}

// identity is the import dedup key of a task.
type identity struct {
	title    string
	category models.Category
	project  string
}

// Importer mirrors vault items into the task store. It assumes a single
// invoker: the duplicate check and the insert are separate statements.
type Importer struct {
	store *store.Store
	opts  Options
}

func New(s *store.Store, opts Options) *Importer {
	return &Importer{store: s, opts: opts}
}

// Run consumes items in order. Every insert commits on its own, so an
// aborted run leaves a consistent prefix and can simply be re-run.
func (im *Importer) Run(ctx context.Context, items iter.Seq2[vault.Item, error]) (Result, error) {
	var res Result
	// Ids of top-level tasks inserted during this run. A later top-level
	// task with the same identity replaces the entry.
	parents := make(map[identity]uint)

	for it, err := range items {
		if err != nil {
			return res, err
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Seen++

		existing, err := im.store.FindByKey(ctx, it.Title, it.Category, it.ProjectName)
		if err != nil {
			return res, err
		}
		if existing != nil {
			res.Skipped++
			appLog.Info("duplicate task skipped", "title", it.Title, "category", it.Category, "project", it.ProjectName)
			continue
		}

		task := &models.Task{
			Title:       it.Title,
			Category:    it.Category,
			ProjectName: it.ProjectName,
			Status:      models.StatusTodo,
		}
		if it.Parent != "" {
			parentID, ok, err := im.resolveParent(ctx, parents, it)
			if err != nil {
				return res, err
			}
			if ok {
				task.ParentTaskID = &parentID
			} else {
				res.Orphaned++
				appLog.Warn("sub-task parent not found, inserting without parent",
					"title", it.Title, "parent", it.Parent, "project", it.ProjectName, "file", it.Path, "line", it.Line)
			}
		}

		if err := im.store.Create(ctx, task); err != nil {
			return res, fmt.Errorf("import %s:%d: %w", it.Path, it.Line, err)
		}
		res.Inserted++
		appLog.Debug("task imported", "id", task.ID, "title", task.Title, "parent_id", deref(task.ParentTaskID))

		if it.Parent == "" {
			parents[identity{it.Title, it.Category, it.ProjectName}] = task.ID
		}
	}

	appLog.Info("vault import finished", "seen", res.Seen, "inserted", res.Inserted, "skipped", res.Skipped, "orphaned", res.Orphaned)
	return res, nil
}

func (im *Importer) resolveParent(ctx context.Context, parents map[identity]uint, it vault.Item) (uint, bool, error) {
	key := identity{it.Parent, it.Category, it.ProjectName}
	if id, ok := parents[key]; ok {
		return id, true, nil
	}
	if !im.opts.ResolveExistingParents {
		return 0, false, nil
	}
	p, err := im.store.FindByKey(ctx, it.Parent, it.Category, it.ProjectName)
	if err != nil {
		return 0, false, err
	}
	if p == nil {
		return 0, false, nil
	}
	return p.ID, true, nil
}

func deref(p *uint) any {
	if p == nil {
		return "none"
	}
	return *p
}
