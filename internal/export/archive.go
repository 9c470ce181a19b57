package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"hadithexport/pkg/models"
)

// Archives are written once and read many times, so they always get the
// strongest deflate level.
const compressionLevel = flate.BestCompression

// ChaptersEntry holds a book's chapter list inside its archive.
const ChaptersEntry = "chapters.json"

// ChapterEntry names the entry holding one chapter's groups.
func ChapterEntry(bookID, chapterID int64) string {
	return fmt.Sprintf("chapter_%d_%d.json", bookID, chapterID)
}

// document is one named file of a book's export, in archive order.
type document struct {
	name      string
	chapterID int64
	value     any
}

// documents lays out a book: the chapter list first, then one entry per
// chapter in chapter order. chapters and groups must line up one to one.
func documents(bookID int64, chapters []models.Chapter, groups []models.ChapterGroups) ([]document, error) {
	if len(chapters) != len(groups) {
		return nil, &SerializationError{
			BookID: bookID,
			Entry:  ChaptersEntry,
			Err:    fmt.Errorf("%d chapters but %d chapter groups", len(chapters), len(groups)),
		}
	}
	if chapters == nil {
		chapters = []models.Chapter{}
	}

	docs := make([]document, 0, len(chapters)+1)
	docs = append(docs, document{name: ChaptersEntry, value: chapters})
	for i, ch := range chapters {
		cg := groups[i]
		if cg.Chapter.ID != ch.ID {
			return nil, &SerializationError{
				BookID:    bookID,
				ChapterID: ch.ID,
				Entry:     ChapterEntry(bookID, ch.ID),
				Err:       fmt.Errorf("groups out of order: got chapter %d", cg.Chapter.ID),
			}
		}
		docs = append(docs, document{
			name:      ChapterEntry(bookID, ch.ID),
			chapterID: ch.ID,
			value:     cg.Groups,
		})
	}
	return docs, nil
}

func encodeDocument(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// BuildArchive serializes a book into a zip container, one entry per
// document, each encoded straight into its compressed stream. The length
// of the result is final only once the whole container is closed.
func BuildArchive(bookID int64, chapters []models.Chapter, groups []models.ChapterGroups) ([]byte, error) {
	docs, err := documents(bookID, chapters, groups)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	for _, d := range docs {
		// No Modified time: identical input must give identical bytes.
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   d.name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, &SerializationError{BookID: bookID, ChapterID: d.chapterID, Entry: d.name, Err: err}
		}
		if err := encodeDocument(w, d.value); err != nil {
			return nil, &SerializationError{BookID: bookID, ChapterID: d.chapterID, Entry: d.name, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &SerializationError{BookID: bookID, Entry: "zip", Err: err}
	}
	return buf.Bytes(), nil
}

// ArchiveContents is a decoded book archive.
type ArchiveContents struct {
	Chapters []models.Chapter
	Groups   []models.ChapterGroups
}

// ReadArchive decodes an archive produced by BuildArchive.
func ReadArchive(bookID int64, data []byte) (*ArchiveContents, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive for book %d: %w", bookID, err)
	}

	var out ArchiveContents
	if err := readEntry(zr, ChaptersEntry, &out.Chapters); err != nil {
		return nil, err
	}

	out.Groups = make([]models.ChapterGroups, 0, len(out.Chapters))
	for _, ch := range out.Chapters {
		var groups []models.Group
		if err := readEntry(zr, ChapterEntry(bookID, ch.ID), &groups); err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, models.ChapterGroups{Chapter: ch, Groups: groups})
	}
	return &out, nil
}

// ReadChapterGroups decodes a single chapter entry of an archive.
func ReadChapterGroups(data []byte, bookID, chapterID int64) ([]models.Group, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive for book %d: %w", bookID, err)
	}
	var groups []models.Group
	if err := readEntry(zr, ChapterEntry(bookID, chapterID), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ErrEntryNotFound is returned when an archive lacks a requested entry.
var ErrEntryNotFound = errors.New("archive entry not found")

func readEntry(zr *zip.Reader, name string, v any) error {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		if err := json.NewDecoder(rc).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrEntryNotFound)
}
