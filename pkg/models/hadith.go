package models

// NoSection is the section id carried by the synthesized group of a
// chapter that has no sections.
const NoSection int64 = -1

type Chapter struct {
	BookID      int64  `json:"book_id"`
	ID          int64  `json:"chapter_id"`
	Number      int64  `json:"number"`
	Title       string `json:"title"`
	TitleArabic string `json:"title_ar,omitempty"`
}

type Section struct {
	BookID      int64  `json:"book_id"`
	ChapterID   int64  `json:"chapter_id"`
	ID          int64  `json:"section_id"`
	Number      int64  `json:"number"`
	Title       string `json:"title"`
	TitleArabic string `json:"title_ar,omitempty"`
	Preface     string `json:"preface,omitempty"`
}

// Hadith is the leaf record. SectionID is nil when the hadith sits
// directly under its chapter.
type Hadith struct {
	BookID    int64  `json:"book_id"`
	ChapterID int64  `json:"chapter_id"`
	SectionID *int64 `json:"section_id"`
	ID        int64  `json:"hadith_id"`
	Narrator  string `json:"narrator,omitempty"`
	Arabic    string `json:"ar,omitempty"`
	English   string `json:"en,omitempty"`
	Grade     string `json:"grade,omitempty"`
}

// Orphan is a hadith whose chapter or section reference does not resolve.
type Orphan struct {
	BookID    int64  `json:"book_id"`
	ChapterID int64  `json:"chapter_id"`
	SectionID *int64 `json:"section_id"`
	HadithID  int64  `json:"hadith_id"`
	Reason    string `json:"reason"`
}
