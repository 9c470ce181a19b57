package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"hadithexport/internal/export"
	"hadithexport/internal/hadith"
	"hadithexport/pkg/database"
	"hadithexport/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:           "hadith-export",
	Short:         "Export hadith.db into one compressed archive per book plus a manifest",
	Long:          "Export hadith.db into one compressed archive per book plus a manifest",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), export.ModeArchive)
	},
}

// openSource loads the config and opens the source database read-only.
func openSource() (utils.Config, *sql.DB, error) {
	cfg, err := utils.LoadConfig(utils.DefaultConfigFile)
	if err != nil {
		return cfg, nil, err
	}
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}

func newExporter(db *sql.DB, cfg utils.Config, mode export.Mode, notifier export.Notifier) (*export.Exporter, error) {
	failure, err := export.ParseFailureMode(cfg.FailureMode)
	if err != nil {
		return nil, err
	}

	exp := export.NewExporter(hadith.NewRepo(db), export.DirSink{Root: cfg.OutputDir}, log.Default())
	exp.Mode = mode
	exp.FailureMode = failure
	exp.Notifier = notifier
	return exp, nil
}

func runExport(ctx context.Context, mode export.Mode) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, db, err := openSource()
	if err != nil {
		return err
	}
	defer db.Close()

	exp, err := newExporter(db, cfg, mode, nil)
	if err != nil {
		return err
	}

	entries, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s export: %w", mode, err)
	}

	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("⚠️ %d of %d books failed, see manifest entries", failed, len(entries))
	}
	log.Printf("✅ exported %d books to %s", len(entries)-failed, cfg.OutputDir)
	return nil
}
