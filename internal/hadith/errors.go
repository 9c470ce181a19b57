package hadith

import (
	"fmt"
	"strings"
)

// QueryError wraps a failed read with the hierarchy position it was made
// for. Zero ids are omitted from the message.
type QueryError struct {
	Op        string
	BookID    int64
	ChapterID int64
	SectionID *int64
	Err       error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.BookID != 0 {
		fmt.Fprintf(&b, " book=%d", e.BookID)
	}
	if e.ChapterID != 0 {
		fmt.Fprintf(&b, " chapter=%d", e.ChapterID)
	}
	if e.SectionID != nil {
		fmt.Fprintf(&b, " section=%d", *e.SectionID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *QueryError) Unwrap() error { return e.Err }
