package export

import "fmt"

// SerializationError reports that a document or the container around it
// could not be built. ChapterID is zero for book-level entries.
type SerializationError struct {
	BookID    int64
	ChapterID int64
	Entry     string
	Err       error
}

func (e *SerializationError) Error() string {
	if e.ChapterID != 0 {
		return fmt.Sprintf("serialize %s book=%d chapter=%d: %v", e.Entry, e.BookID, e.ChapterID, e.Err)
	}
	return fmt.Sprintf("serialize %s book=%d: %v", e.Entry, e.BookID, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// FilesystemError reports a failed directory creation or file write.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
