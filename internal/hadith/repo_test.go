package hadith_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hadithexport/internal/hadith"
	"hadithexport/internal/testutil"
	"hadithexport/pkg/models"
)

func newRepo(t *testing.T, batches ...string) *hadith.Repo {
	t.Helper()
	return hadith.NewRepo(testutil.OpenDB(t, testutil.CreateDB(t, batches...)))
}

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListBooks(t *testing.T) {
	repo := newRepo(t)

	books, err := repo.ListBooks(context.Background())
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}

	b := books[0]
	if b.ID != 1 || b.Title != "Sahih" {
		t.Errorf("books[0] = %d %q, want 1 %q", b.ID, b.Title, "Sahih")
	}
	if got := b.Fields["author"]; got != "Imam" {
		t.Errorf("author = %#v, want %q", got, "Imam")
	}
	if got := b.Fields["hadith_count"]; got != int64(6) {
		t.Errorf("hadith_count = %#v, want int64(6)", got)
	}
	if _, ok := b.Fields["id"]; ok {
		t.Error("id should not be duplicated into Fields")
	}

	if got, ok := books[1].Fields["author"]; !ok || got != nil {
		t.Errorf("NULL author = %#v (present %v), want nil", got, ok)
	}
}

func TestListBooksRejectsShape(t *testing.T) {
	repo := newRepo(t, `CREATE TABLE books (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO books VALUES (1, 'x');`)

	_, err := repo.ListBooks(context.Background())
	var qerr *hadith.QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("ListBooks error = %v, want *QueryError", err)
	}
}

func TestListChaptersOrderedByNumber(t *testing.T) {
	repo := newRepo(t)

	chapters, err := repo.ListChapters(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	got := ids(chapters, func(c models.Chapter) int64 { return c.ID })
	if want := []int64{20, 10}; !equalIDs(got, want) {
		t.Errorf("chapter order = %v, want %v", got, want)
	}
	if chapters[0].TitleArabic != "الوحي" {
		t.Errorf("title_ar = %q", chapters[0].TitleArabic)
	}

	empty, err := repo.ListChapters(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListChapters(2): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListChapters(2) = %#v, want empty non-nil slice", empty)
	}
}

func TestListSectionsOrderedByNumber(t *testing.T) {
	repo := newRepo(t)

	sections, err := repo.ListSections(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	got := ids(sections, func(s models.Section) int64 { return s.ID })
	if want := []int64{7, 3}; !equalIDs(got, want) {
		t.Errorf("section order = %v, want %v", got, want)
	}
	if sections[0].Preface != "Preface" {
		t.Errorf("preface = %q", sections[0].Preface)
	}

	none, err := repo.ListSections(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ListSections(20): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("chapter 20 has %d sections, want 0", len(none))
	}
}

func TestListHadiths(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	seven := int64(7)
	three := int64(3)

	tests := []struct {
		name      string
		chapterID int64
		sectionID *int64
		want      []int64
	}{
		{"sectionless chapter", 20, nil, []int64{1, 2, 3}},
		{"whole chapter ignores sections", 10, nil, []int64{4, 5, 6}},
		{"section 7", 10, &seven, []int64{4, 5}},
		{"section 3", 10, &three, []int64{6}},
		{"missing chapter", 99, nil, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hadiths, err := repo.ListHadiths(ctx, 1, tt.chapterID, tt.sectionID)
			if err != nil {
				t.Fatalf("ListHadiths: %v", err)
			}
			got := ids(hadiths, func(h models.Hadith) int64 { return h.ID })
			if !equalIDs(got, tt.want) {
				t.Errorf("hadith ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListHadithsNullColumns(t *testing.T) {
	repo := newRepo(t)

	hadiths, err := repo.ListHadiths(context.Background(), 1, 20, nil)
	if err != nil {
		t.Fatalf("ListHadiths: %v", err)
	}
	h := hadiths[1]
	if h.ID != 2 || h.Narrator != "" || h.Grade != "" || h.SectionID != nil {
		t.Errorf("hadith 2 = %+v, want empty narrator/grade and nil section", h)
	}
}

func TestQueryErrorCarriesPosition(t *testing.T) {
	repo := newRepo(t, `CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT);`)
	section := int64(4)

	_, err := repo.ListHadiths(context.Background(), 1, 2, &section)
	var qerr *hadith.QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if qerr.BookID != 1 || qerr.ChapterID != 2 || qerr.SectionID == nil || *qerr.SectionID != 4 {
		t.Errorf("QueryError position = %d/%d/%v", qerr.BookID, qerr.ChapterID, qerr.SectionID)
	}
	if want := "list hadiths book=1 chapter=2 section=4: "; !strings.HasPrefix(qerr.Error(), want) {
		t.Errorf("Error() = %q, want prefix %q", qerr.Error(), want)
	}
}

func TestFindOrphans(t *testing.T) {
	repo := newRepo(t, testutil.Schema, testutil.ScenarioSeed, `
		INSERT INTO hadith (book_id, chapter_id, section_id, hadith_id) VALUES
			(1, 99, NULL, 100),
			(1, 10, 42, 101);
	`)

	orphans, err := repo.FindOrphans(context.Background())
	if err != nil {
		t.Fatalf("FindOrphans: %v", err)
	}
	if len(orphans) != 2 {
		t.Fatalf("got %d orphans, want 2: %+v", len(orphans), orphans)
	}
	// ordered by chapter: chapter 10 before chapter 99
	if orphans[0].HadithID != 101 || orphans[0].Reason != "missing section" {
		t.Errorf("orphans[0] = %+v", orphans[0])
	}
	if orphans[1].HadithID != 100 || orphans[1].Reason != "missing chapter" {
		t.Errorf("orphans[1] = %+v", orphans[1])
	}
}
