package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"owlistic-notes/notes/config"
	"owlistic-notes/notes/database"
	"owlistic-notes/notes/models"
	"owlistic-notes/notes/query"
	"owlistic-notes/notes/services"
)

// app holds what one invocation opens: the store, the data context over it
// and the lifecycle service that flushes it.
type app struct {
	storePath string
	verbose   bool

	cfg       config.Config
	db        *database.Database
	notes     *services.DataContext
	lifecycle *services.LifecycleService
	cancel    context.CancelFunc
}

func (a *app) open(ctx context.Context) error {
	a.cfg = config.Load()
	if a.storePath != "" {
		a.cfg.StorePath = a.storePath
	}

	level := a.cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := database.Setup(a.cfg)
	if err != nil {
		return err
	}
	a.db = db

	notes, err := services.NewDataContext(db, services.WithLogger(logger))
	if err != nil {
		return err
	}
	a.notes = notes

	a.lifecycle = services.NewLifecycleService(notes, a.cfg.AutosaveInterval, logger)
	a.lifecycle.Start()

	ctx, a.cancel = context.WithCancel(ctx)
	a.lifecycle.ListenForSignals(ctx, os.Interrupt, syscall.SIGTERM)
	return nil
}

// shutdown runs the terminate path: save, then release the store.
func (a *app) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.lifecycle != nil {
		a.lifecycle.Terminate()
	}
	if a.notes != nil {
		if err := a.notes.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	} else if a.db != nil {
		a.db.Close()
	}
}

// save flushes now so a failure reaches the user instead of only the log.
func (a *app) save() error {
	return a.notes.Save()
}

// findNote resolves a full id or an unambiguous id prefix.
func (a *app) findNote(ref string) (*models.Note, error) {
	rs, err := a.notes.QueryNotes(query.NotesByRecency())
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	matches := matchID(rs.Snapshot(), ref)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", services.ErrNoteNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("note id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// findCategory resolves an id, an id prefix or an exact name. Names are not
// unique, so a name shared by several categories must be given as an id.
func (a *app) findCategory(ref string) (*models.Category, error) {
	rs, err := a.notes.QueryCategories(query.CategoriesByName())
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	all := rs.Snapshot()
	matches := matchID(all, ref)
	if len(matches) == 0 {
		for _, c := range all {
			if c.Name == strings.TrimSpace(ref) {
				matches = append(matches, c)
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", services.ErrCategoryNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("category %q is ambiguous (%d matches), use its id", ref, len(matches))
	}
}

func matchID[T models.Entity](all []T, ref string) []T {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return nil
	}
	var out []T
	for _, e := range all {
		id := e.EntityID().String()
		if id == ref {
			return []T{e}
		}
		if strings.HasPrefix(id, ref) {
			out = append(out, e)
		}
	}
	return out
}

func shortID(e models.Entity) string {
	return e.EntityID().String()[:8]
}
