package export

import (
	"bytes"
	"path"

	"hadithexport/pkg/models"
)

// BookEntry holds the book row in the uncompressed tree layout.
const BookEntry = "book.json"

// WriteTree writes a book's documents uncompressed under dir, mirroring
// the archive layout plus a book.json. It returns the total bytes written.
func WriteTree(sink Sink, dir string, book models.Book, chapters []models.Chapter, groups []models.ChapterGroups) (int64, error) {
	docs, err := documents(book.ID, chapters, groups)
	if err != nil {
		return 0, err
	}
	docs = append([]document{{name: BookEntry, value: book}}, docs...)

	if err := sink.MkdirAll(dir); err != nil {
		return 0, err
	}

	var total int64
	for _, d := range docs {
		var buf bytes.Buffer
		if err := encodeDocument(&buf, d.value); err != nil {
			return total, &SerializationError{BookID: book.ID, ChapterID: d.chapterID, Entry: d.name, Err: err}
		}
		if err := sink.WriteFile(path.Join(dir, d.name), buf.Bytes()); err != nil {
			return total, err
		}
		total += int64(buf.Len())
	}
	return total, nil
}
