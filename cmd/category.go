package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"owlistic-notes/notes/query"

	"github.com/spf13/cobra"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		newCategoryAddCmd(a),
		newCategoryListCmd(a),
		newCategoryRenameCmd(a),
		newCategoryRmCmd(a),
	)
	return cmd
}

func newCategoryAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := a.notes.CreateCategory(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", category.ID)
			return nil
		},
	}
}

type categoryJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Notes int    `json:"notes"`
}

func newCategoryListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.notes.QueryCategories(query.CategoriesByName())
			if err != nil {
				return err
			}
			defer rs.Close()

			out := make([]categoryJSON, 0, rs.Len())
			for _, c := range rs.Snapshot() {
				out = append(out, categoryJSON{
					ID:    c.ID.String(),
					Name:  c.Name,
					Notes: len(a.notes.NotesInCategory(c.ID)),
				})
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(out)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range out {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID[:8], c.Name, c.Notes)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newCategoryRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <name>",
		Short: "Rename a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := a.findCategory(args[0])
			if err != nil {
				return err
			}
			if _, err := a.notes.UpdateCategory(category.ID, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return a.save()
		},
	}
}

func newCategoryRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <category>",
		Short: "Delete a category; its notes become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := a.findCategory(args[0])
			if err != nil {
				return err
			}
			if err := a.notes.DeleteCategory(category.ID); err != nil {
				return err
			}
			return a.save()
		},
	}
}
