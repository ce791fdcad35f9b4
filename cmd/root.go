package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "notes",
		Short: "A local notes store",
		Long: `notes keeps titled notes, optionally filed under categories, in a single
SQLite file. Changes are written in one transaction when the command ends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.storePath, "store", "", "Path of the store file (default from NOTES_STORE_PATH)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newCategoryCmd(a),
		newLogCmd(a),
	)
	return root
}
