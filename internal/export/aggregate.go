package export

import (
	"context"
	"log"

	"hadithexport/pkg/models"
)

// Store is the read side the export needs. hadith.Repo implements it.
type Store interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListChapters(ctx context.Context, bookID int64) ([]models.Chapter, error)
	ListSections(ctx context.Context, bookID, chapterID int64) ([]models.Section, error)
	ListHadiths(ctx context.Context, bookID, chapterID int64, sectionID *int64) ([]models.Hadith, error)
}

// Aggregator rebuilds the chapter -> section -> hadith nesting of a book.
type Aggregator struct {
	Store  Store
	Logger *log.Logger
}

// NewAggregator creates an Aggregator reading from store.
func NewAggregator(store Store, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{Store: store, Logger: logger}
}

// Aggregate returns one ChapterGroups per chapter, in the order given.
// A chapter without sections yields a single synthesized group holding
// all of its hadith, so every chapter has at least one group. The first
// failed read stops aggregation of the book.
func (a *Aggregator) Aggregate(ctx context.Context, bookID int64, chapters []models.Chapter) ([]models.ChapterGroups, error) {
	out := make([]models.ChapterGroups, 0, len(chapters))

	for _, ch := range chapters {
		sections, err := a.Store.ListSections(ctx, bookID, ch.ID)
		if err != nil {
			return nil, err
		}

		if len(sections) == 0 {
			hadiths, err := a.Store.ListHadiths(ctx, bookID, ch.ID, nil)
			if err != nil {
				return nil, err
			}
			a.Logger.Printf("[export] book=%d chapter=%d has no sections, grouping %d hadiths under the chapter", bookID, ch.ID, len(hadiths))
			out = append(out, models.ChapterGroups{
				Chapter: ch,
				Groups:  []models.Group{chapterGroup(ch, hadiths)},
			})
			continue
		}

		groups := make([]models.Group, 0, len(sections))
		for _, s := range sections {
			sectionID := s.ID
			hadiths, err := a.Store.ListHadiths(ctx, bookID, ch.ID, &sectionID)
			if err != nil {
				return nil, err
			}
			groups = append(groups, sectionGroup(s, hadiths))
		}
		out = append(out, models.ChapterGroups{Chapter: ch, Groups: groups})
	}

	return out, nil
}

func chapterGroup(ch models.Chapter, hadiths []models.Hadith) models.Group {
	if hadiths == nil {
		hadiths = []models.Hadith{}
	}
	return models.Group{
		SectionID:   models.NoSection,
		Number:      ch.Number,
		Title:       ch.Title,
		TitleArabic: ch.TitleArabic,
		Hadiths:     hadiths,
	}
}

func sectionGroup(s models.Section, hadiths []models.Hadith) models.Group {
	if hadiths == nil {
		hadiths = []models.Hadith{}
	}
	return models.Group{
		SectionID:   s.ID,
		Number:      s.Number,
		Title:       s.Title,
		TitleArabic: s.TitleArabic,
		Preface:     s.Preface,
		Hadiths:     hadiths,
	}
}
