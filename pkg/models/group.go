package models

// Group is one section of a chapter with its hadith, or, for a chapter
// without sections, the whole chapter under SectionID == NoSection.
type Group struct {
	SectionID   int64    `json:"section_id"`
	Number      int64    `json:"number"`
	Title       string   `json:"title"`
	TitleArabic string   `json:"title_ar,omitempty"`
	Preface     string   `json:"preface,omitempty"`
	Hadiths     []Hadith `json:"hadiths"`
}

// Synthesized reports whether the group stands in for a missing section.
func (g Group) Synthesized() bool { return g.SectionID == NoSection }

// ChapterGroups pairs a chapter with its groups in section order.
// Groups always holds at least one element.
type ChapterGroups struct {
	Chapter Chapter
	Groups  []Group
}
