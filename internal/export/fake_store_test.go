package export

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"hadithexport/internal/hadith"
	"hadithexport/pkg/models"
)

// fakeStore is an in-memory Store. Slices are kept in the order the
// database would return them.
type fakeStore struct {
	books    []models.Book
	chapters map[int64][]models.Chapter
	sections map[[2]int64][]models.Section
	hadiths  []models.Hadith

	// failChapter makes ListSections fail for that chapter id.
	failChapter int64
	calls       []string
}

var errFakeQuery = errors.New("disk I/O error")

func (s *fakeStore) ListBooks(ctx context.Context) ([]models.Book, error) {
	s.calls = append(s.calls, "books")
	return s.books, nil
}

func (s *fakeStore) ListChapters(ctx context.Context, bookID int64) ([]models.Chapter, error) {
	s.calls = append(s.calls, fmt.Sprintf("chapters %d", bookID))
	return append([]models.Chapter{}, s.chapters[bookID]...), nil
}

func (s *fakeStore) ListSections(ctx context.Context, bookID, chapterID int64) ([]models.Section, error) {
	s.calls = append(s.calls, fmt.Sprintf("sections %d/%d", bookID, chapterID))
	if s.failChapter != 0 && chapterID == s.failChapter {
		return nil, &hadith.QueryError{Op: "list sections", BookID: bookID, ChapterID: chapterID, Err: errFakeQuery}
	}
	return append([]models.Section{}, s.sections[[2]int64{bookID, chapterID}]...), nil
}

func (s *fakeStore) ListHadiths(ctx context.Context, bookID, chapterID int64, sectionID *int64) ([]models.Hadith, error) {
	if sectionID != nil {
		s.calls = append(s.calls, fmt.Sprintf("hadiths %d/%d/%d", bookID, chapterID, *sectionID))
	} else {
		s.calls = append(s.calls, fmt.Sprintf("hadiths %d/%d", bookID, chapterID))
	}

	out := make([]models.Hadith, 0)
	for _, h := range s.hadiths {
		if h.BookID != bookID || h.ChapterID != chapterID {
			continue
		}
		if sectionID != nil && (h.SectionID == nil || *h.SectionID != *sectionID) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sec(id int64) *int64 { return &id }

// scenarioStore holds book 1 with a sectionless chapter A (3 hadith) and
// chapter B with two sections of 2 and 1 hadith, and book 2 with no
// chapters.
func scenarioStore() *fakeStore {
	return &fakeStore{
		books: []models.Book{
			{ID: 1, Title: "Sahih", Fields: map[string]any{"author": "Imam"}},
			{ID: 2, Title: "Empty Book", Fields: map[string]any{}},
		},
		chapters: map[int64][]models.Chapter{
			1: {
				{BookID: 1, ID: 20, Number: 1, Title: "A"},
				{BookID: 1, ID: 10, Number: 2, Title: "B"},
			},
		},
		sections: map[[2]int64][]models.Section{
			{1, 10}: {
				{BookID: 1, ChapterID: 10, ID: 7, Number: 1, Title: "B1"},
				{BookID: 1, ChapterID: 10, ID: 3, Number: 2, Title: "B2"},
			},
		},
		hadiths: []models.Hadith{
			{BookID: 1, ChapterID: 20, ID: 3, English: "a3"},
			{BookID: 1, ChapterID: 20, ID: 1, English: "a1"},
			{BookID: 1, ChapterID: 20, ID: 2, English: "a2"},
			{BookID: 1, ChapterID: 10, SectionID: sec(7), ID: 5},
			{BookID: 1, ChapterID: 10, SectionID: sec(7), ID: 4},
			{BookID: 1, ChapterID: 10, SectionID: sec(3), ID: 6},
		},
	}
}
