package main

import (
	"github.com/spf13/cobra"

	"hadithexport/internal/export"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Write each book as an uncompressed directory mirroring its archive",
	Long:  "Write each book as an uncompressed directory mirroring its archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), export.ModeTree)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
