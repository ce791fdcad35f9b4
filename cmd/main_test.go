package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"owlistic-notes/notes/database"
	"owlistic-notes/notes/models"
	"owlistic-notes/notes/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notes(t *testing.T, store string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(append(args, "--store", store), &out), "notes %v", args)
	return strings.TrimSpace(out.String())
}

type listedNote struct {
	models.Note
	Category string `json:"category"`
}

func listJSON(t *testing.T, store string, args ...string) []listedNote {
	t.Helper()
	var listed []listedNote
	require.NoError(t, json.Unmarshal([]byte(notes(t, store, append([]string{"list", "--json"}, args...)...)), &listed))
	return listed
}

func TestCLI_NoteLifecycle(t *testing.T) {
	store := filepath.Join(t.TempDir(), "Notes.sqlite")

	workID := notes(t, store, "category", "add", "Work")
	planID := notes(t, store, "add", "Plan", "-c", "quarterly goals")
	notes(t, store, "add", "Groceries", "--category", "Work")

	notes(t, store, "edit", planID[:8], "--category", workID)
	listed := listJSON(t, store, "--category", "Work")
	require.Len(t, listed, 2)
	assert.Equal(t, "Plan", listed[0].Title)
	assert.Equal(t, "Work", listed[0].Category)
	assert.Equal(t, "quarterly goals", listed[0].Contents)

	notes(t, store, "category", "rename", "Work", "Office")
	listed = listJSON(t, store, "--search", "plan")
	require.Len(t, listed, 1)
	assert.Equal(t, "Office", listed[0].Category)

	notes(t, store, "category", "rm", workID)
	listed = listJSON(t, store, "--uncategorized")
	assert.Len(t, listed, 2)

	notes(t, store, "rm", planID)
	listed = listJSON(t, store)
	require.Len(t, listed, 1)
	assert.Equal(t, "Groceries", listed[0].Title)

	log := notes(t, store, "log", "-n", "3")
	assert.Contains(t, log, "note.deleted")
	assert.Len(t, strings.Split(log, "\n"), 3)
}

func TestCLI_EditIgnoresEmptyTitle(t *testing.T) {
	store := filepath.Join(t.TempDir(), "Notes.sqlite")
	id := notes(t, store, "add", "Plan")

	notes(t, store, "edit", id, "--title", "")
	assert.Contains(t, notes(t, store, "show", id), "# Plan")
}

func TestCLI_AddRejectsBlankTitle(t *testing.T) {
	store := filepath.Join(t.TempDir(), "Notes.sqlite")

	err := run([]string{"add", "  ", "--store", store}, &bytes.Buffer{})
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Empty(t, listJSON(t, store))
}

func TestCLI_UnknownNote(t *testing.T) {
	store := filepath.Join(t.TempDir(), "Notes.sqlite")

	err := run([]string{"rm", "ffffffff", "--store", store}, &bytes.Buffer{})
	assert.ErrorIs(t, err, services.ErrNoteNotFound)
}

func TestCLI_CorruptStore(t *testing.T) {
	store := filepath.Join(t.TempDir(), "Notes.sqlite")
	require.NoError(t, os.WriteFile(store, bytes.Repeat([]byte("not sqlite "), 512), 0o600))

	err := run([]string{"list", "--store", store}, &bytes.Buffer{})
	var openErr *database.StoreOpenError
	assert.True(t, errors.As(err, &openErr))
}
