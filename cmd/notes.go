package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"owlistic-notes/notes/models"
	"owlistic-notes/notes/query"
	"owlistic-notes/notes/services"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var contents, category string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []services.NoteOption
			if category != "" {
				c, err := a.findCategory(category)
				if err != nil {
					return err
				}
				opts = append(opts, services.WithCategory(c.ID))
			}

			var note *models.Note
			err := a.notes.PerformBatch(func() error {
				var err error
				note, err = a.notes.CreateNote(strings.Join(args, " "), contents)
				if err != nil || len(opts) == 0 {
					return err
				}
				_, err = a.notes.UpdateNote(note.ID, opts...)
				return err
			})
			if err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contents, "contents", "c", "", "Note body")
	cmd.Flags().StringVar(&category, "category", "", "Category id or name")
	return cmd
}

type noteJSON struct {
	*models.Note
	CategoryName string `json:"category,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		asJSON        bool
		category      string
		uncategorized bool
		search        string
		sortKey       string
		ascending     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := query.Request[*models.Note]{SortKey: query.SortKey(sortKey), Ascending: ascending}

			var filters []query.Filter[*models.Note]
			if category != "" {
				c, err := a.findCategory(category)
				if err != nil {
					return err
				}
				filters = append(filters, query.InCategory(c.ID))
			}
			if uncategorized {
				filters = append(filters, query.Uncategorized())
			}
			if search != "" {
				filters = append(filters, query.TitleContains(search))
			}
			if len(filters) > 0 {
				req.Filter = query.And(filters...)
			}

			rs, err := a.notes.QueryNotes(req)
			if err != nil {
				return err
			}
			defer rs.Close()

			if asJSON {
				return writeNotesJSON(cmd.OutOrStdout(), rs.Snapshot())
			}
			return writeNotesTable(cmd.OutOrStdout(), rs.Snapshot())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&category, "category", "", "Only notes in this category (id or name)")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Only notes without a category")
	cmd.Flags().StringVar(&search, "search", "", "Only notes whose title contains this text")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.ByUpdatedAt), "Sort by updated_at, created_at or title")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Sort ascending")
	return cmd
}

func writeNotesJSON(w io.Writer, notes []*models.Note) error {
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteJSON{Note: n, CategoryName: n.CategoryName()})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func writeNotesTable(w io.Writer, notes []*models.Note) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			shortID(n), n.UpdatedAt.Local().Format(time.DateTime), n.Title, n.CategoryName())
	}
	return tw.Flush()
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.findNote(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s\n", note.Title)
			if name := note.CategoryName(); name != "" {
				fmt.Fprintf(w, "category: %s\n", name)
			}
			fmt.Fprintf(w, "updated: %s\n\n%s\n", note.UpdatedAt.Local().Format(time.DateTime), note.Contents)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var (
		title, contents, category string
		noCategory                bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title, contents or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.findNote(args[0])
			if err != nil {
				return err
			}

			var opts []services.NoteOption
			if cmd.Flags().Changed("title") {
				opts = append(opts, services.WithTitle(title))
			}
			if cmd.Flags().Changed("contents") {
				opts = append(opts, services.WithContents(contents))
			}
			switch {
			case noCategory:
				opts = append(opts, services.WithoutCategory())
			case category != "":
				c, err := a.findCategory(category)
				if err != nil {
					return err
				}
				opts = append(opts, services.WithCategory(c.ID))
			}

			if _, err := a.notes.UpdateNote(note.ID, opts...); err != nil {
				return err
			}
			return a.save()
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title; an empty title is ignored")
	cmd.Flags().StringVarP(&contents, "contents", "c", "", "New body")
	cmd.Flags().StringVar(&category, "category", "", "Move to this category (id or name)")
	cmd.Flags().BoolVar(&noCategory, "no-category", false, "Clear the category")
	cmd.MarkFlagsMutuallyExclusive("category", "no-category")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := make([]*models.Note, 0, len(args))
			for _, ref := range args {
				note, err := a.findNote(ref)
				if err != nil {
					return err
				}
				notes = append(notes, note)
			}

			err := a.notes.PerformBatch(func() error {
				for _, note := range notes {
					if err := a.notes.DeleteNote(note.ID); err != nil && !errors.Is(err, services.ErrNoteNotFound) {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			return a.save()
		},
	}
}
