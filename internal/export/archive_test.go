package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/klauspost/compress/zip"

	"hadithexport/pkg/models"
)

func buildScenario(t *testing.T) ([]models.Chapter, []models.ChapterGroups, []byte) {
	t.Helper()
	store := scenarioStore()
	chapters := store.chapters[1]
	groups, err := NewAggregator(store, quietLogger()).Aggregate(context.Background(), 1, chapters)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	data, err := BuildArchive(1, chapters, groups)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	return chapters, groups, data
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		if f.Method != zip.Deflate {
			t.Errorf("%s stored with method %d, want deflate", f.Name, f.Method)
		}
		if !f.Modified.IsZero() && f.Modified.Year() > 1980 {
			t.Errorf("%s carries a modification time %v", f.Name, f.Modified)
		}
		names = append(names, f.Name)
	}
	return names
}

func TestBuildArchiveScenario(t *testing.T) {
	_, _, data := buildScenario(t)

	names := entryNames(t, data)
	want := []string{"chapters.json", "chapter_1_20.json", "chapter_1_10.json"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}

	contents, err := ReadArchive(1, data)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	a, b := contents.Groups[0], contents.Groups[1]
	if len(a.Groups) != 1 || len(a.Groups[0].Hadiths) != 3 {
		t.Errorf("chapter A = %d groups, want 1 group of 3", len(a.Groups))
	}
	if len(b.Groups) != 2 || len(b.Groups[0].Hadiths) != 2 || len(b.Groups[1].Hadiths) != 1 {
		t.Errorf("chapter B groups = %+v, want 2 then 1 hadiths", b.Groups)
	}
}

func TestBuildArchiveRoundTrip(t *testing.T) {
	chapters, groups, data := buildScenario(t)

	contents, err := ReadArchive(1, data)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(contents.Chapters) != len(chapters) {
		t.Fatalf("chapters = %d, want %d", len(contents.Chapters), len(chapters))
	}
	for i := range chapters {
		if contents.Chapters[i] != chapters[i] {
			t.Errorf("chapter %d = %+v, want %+v", i, contents.Chapters[i], chapters[i])
		}
		gotGroups, wantGroups := contents.Groups[i].Groups, groups[i].Groups
		if len(gotGroups) != len(wantGroups) {
			t.Fatalf("chapter %d: %d groups, want %d", i, len(gotGroups), len(wantGroups))
		}
		for j := range wantGroups {
			g, w := gotGroups[j], wantGroups[j]
			if g.SectionID != w.SectionID || g.Title != w.Title || g.Number != w.Number {
				t.Errorf("chapter %d group %d = %+v, want %+v", i, j, g, w)
			}
			if !sameIDs(groupHadithIDs(g), groupHadithIDs(w)) {
				t.Errorf("chapter %d group %d hadiths = %v, want %v", i, j, groupHadithIDs(g), groupHadithIDs(w))
			}
			for k := range w.Hadiths {
				gh, wh := g.Hadiths[k], w.Hadiths[k]
				if gh.English != wh.English || (gh.SectionID == nil) != (wh.SectionID == nil) {
					t.Errorf("hadith %d differs after round trip: %+v vs %+v", wh.ID, gh, wh)
				}
			}
		}
	}
}

func TestBuildArchiveDeterministic(t *testing.T) {
	_, _, first := buildScenario(t)
	_, _, second := buildScenario(t)
	if !bytes.Equal(first, second) {
		t.Error("two builds of the same book differ")
	}
}

func TestBuildArchiveNoChapters(t *testing.T) {
	data, err := BuildArchive(2, nil, nil)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty book produced an empty container")
	}

	names := entryNames(t, data)
	if len(names) != 1 || names[0] != ChaptersEntry {
		t.Fatalf("entries = %v, want only %s", names, ChaptersEntry)
	}

	contents, err := ReadArchive(2, data)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if contents.Chapters == nil || len(contents.Chapters) != 0 {
		t.Errorf("chapters = %#v, want empty list", contents.Chapters)
	}
}

func TestBuildArchiveMismatchedGroups(t *testing.T) {
	chapters := []models.Chapter{{BookID: 1, ID: 1}, {BookID: 1, ID: 2}}

	tests := []struct {
		name   string
		groups []models.ChapterGroups
	}{
		{"count", []models.ChapterGroups{{Chapter: chapters[0]}}},
		{"order", []models.ChapterGroups{{Chapter: chapters[1]}, {Chapter: chapters[0]}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildArchive(1, chapters, tt.groups)
			var serr *SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("error = %v, want *SerializationError", err)
			}
			if serr.BookID != 1 {
				t.Errorf("SerializationError.BookID = %d, want 1", serr.BookID)
			}
		})
	}
}

func TestReadChapterGroups(t *testing.T) {
	_, _, data := buildScenario(t)

	groups, err := ReadChapterGroups(data, 1, 10)
	if err != nil {
		t.Fatalf("ReadChapterGroups: %v", err)
	}
	if len(groups) != 2 || groups[0].SectionID != 7 {
		t.Errorf("groups = %+v, want sections 7 and 3", groups)
	}

	if _, err := ReadChapterGroups(data, 1, 99); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("missing chapter error = %v, want ErrEntryNotFound", err)
	}
}
