package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"hadithexport/internal/hadith"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List hadith whose chapter or section does not exist",
	Long:  "List hadith whose chapter or section does not exist",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, db, err := openSource()
	if err != nil {
		return err
	}
	defer db.Close()

	orphans, err := hadith.NewRepo(db).FindOrphans(ctx)
	if err != nil {
		return err
	}
	for _, o := range orphans {
		section := "none"
		if o.SectionID != nil {
			section = fmt.Sprint(*o.SectionID)
		}
		log.Printf("[check] hadith=%d book=%d chapter=%d section=%s: %s", o.HadithID, o.BookID, o.ChapterID, section, o.Reason)
	}
	if len(orphans) > 0 {
		return fmt.Errorf("%d orphan hadiths", len(orphans))
	}
	log.Println("✅ every hadith resolves to its chapter and section")
	return nil
}
