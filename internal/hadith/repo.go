package hadith

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hadithexport/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT * FROM books ORDER BY id`)
	if err != nil {
		return nil, &QueryError{Op: "list books", Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Op: "list books", Err: fmt.Errorf("columns: %w", err)}
	}
	idIdx, titleIdx := -1, -1
	for i, c := range cols {
		switch strings.ToLower(c) {
		case "id":
			idIdx = i
		case "title":
			titleIdx = i
		}
	}
	if idIdx < 0 || titleIdx < 0 {
		return nil, &QueryError{Op: "list books", Err: fmt.Errorf("books table needs id and title columns, have %v", cols)}
	}

	var out []models.Book
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Op: "list books", Err: fmt.Errorf("scan: %w", err)}
		}

		id, ok := vals[idIdx].(int64)
		if !ok {
			return nil, &QueryError{Op: "list books", Err: fmt.Errorf("non-integer book id %v", vals[idIdx])}
		}
		b := models.Book{ID: id, Fields: make(map[string]any, len(cols)-2)}

		title, err := coerce(vals[titleIdx])
		if err != nil {
			return nil, &QueryError{Op: "list books", BookID: id, Err: fmt.Errorf("title: %w", err)}
		}
		if title != nil {
			b.Title = fmt.Sprint(title)
		}

		for i, c := range cols {
			if i == idIdx || i == titleIdx {
				continue
			}
			v, err := coerce(vals[i])
			if err != nil {
				return nil, &QueryError{Op: "list books", BookID: id, Err: fmt.Errorf("column %s: %w", c, err)}
			}
			b.Fields[c] = v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Op: "list books", Err: fmt.Errorf("rows err: %w", err)}
	}
	return out, nil
}

// coerce maps a driver value onto the scalar kinds a JSON document can
// hold. Blobs are taken as text, timestamps as RFC3339; anything else is
// rejected.
func coerce(v any) (any, error) {
	switch t := v.(type) {
	case nil, int64, float64, string, bool:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", v)
	}
}

func (r *Repo) ListChapters(ctx context.Context, bookID int64) ([]models.Chapter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT book_id, chapter_id, number, title_en, title_ar
		FROM chapter
		WHERE book_id = ?
		ORDER BY number, chapter_id
	`, bookID)
	if err != nil {
		return nil, &QueryError{Op: "list chapters", BookID: bookID, Err: err}
	}
	defer rows.Close()

	out := make([]models.Chapter, 0)
	for rows.Next() {
		var (
			c       models.Chapter
			title   sql.NullString
			titleAr sql.NullString
		)
		if err := rows.Scan(&c.BookID, &c.ID, &c.Number, &title, &titleAr); err != nil {
			return nil, &QueryError{Op: "list chapters", BookID: bookID, Err: fmt.Errorf("scan: %w", err)}
		}
		c.Title = title.String
		c.TitleArabic = titleAr.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Op: "list chapters", BookID: bookID, Err: fmt.Errorf("rows err: %w", err)}
	}
	return out, nil
}

func (r *Repo) ListSections(ctx context.Context, bookID, chapterID int64) ([]models.Section, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT book_id, chapter_id, section_id, number, title_en, title_ar, preface
		FROM section
		WHERE book_id = ? AND chapter_id = ?
		ORDER BY number, section_id
	`, bookID, chapterID)
	if err != nil {
		return nil, &QueryError{Op: "list sections", BookID: bookID, ChapterID: chapterID, Err: err}
	}
	defer rows.Close()

	out := make([]models.Section, 0)
	for rows.Next() {
		var (
			s       models.Section
			title   sql.NullString
			titleAr sql.NullString
			preface sql.NullString
		)
		if err := rows.Scan(&s.BookID, &s.ChapterID, &s.ID, &s.Number, &title, &titleAr, &preface); err != nil {
			return nil, &QueryError{Op: "list sections", BookID: bookID, ChapterID: chapterID, Err: fmt.Errorf("scan: %w", err)}
		}
		s.Title = title.String
		s.TitleArabic = titleAr.String
		s.Preface = preface.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Op: "list sections", BookID: bookID, ChapterID: chapterID, Err: fmt.Errorf("rows err: %w", err)}
	}
	return out, nil
}

// ListHadiths returns the hadith of a chapter ordered by id. A nil
// sectionID returns every hadith of the chapter whatever its section.
func (r *Repo) ListHadiths(ctx context.Context, bookID, chapterID int64, sectionID *int64) ([]models.Hadith, error) {
	sqlStr := `
		SELECT book_id, chapter_id, section_id, hadith_id, narrator, text_ar, text_en, grade
		FROM hadith
		WHERE book_id = ? AND chapter_id = ?
	`
	args := []any{bookID, chapterID}
	if sectionID != nil {
		sqlStr += " AND section_id = ?"
		args = append(args, *sectionID)
	}
	sqlStr += " ORDER BY hadith_id"

	qerr := func(err error) error {
		return &QueryError{Op: "list hadiths", BookID: bookID, ChapterID: chapterID, SectionID: sectionID, Err: err}
	}

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, qerr(err)
	}
	defer rows.Close()

	out := make([]models.Hadith, 0)
	for rows.Next() {
		var (
			h        models.Hadith
			section  sql.NullInt64
			narrator sql.NullString
			arabic   sql.NullString
			english  sql.NullString
			grade    sql.NullString
		)
		if err := rows.Scan(&h.BookID, &h.ChapterID, &section, &h.ID, &narrator, &arabic, &english, &grade); err != nil {
			return nil, qerr(fmt.Errorf("scan: %w", err))
		}
		if section.Valid {
			id := section.Int64
			h.SectionID = &id
		}
		h.Narrator = narrator.String
		h.Arabic = arabic.String
		h.English = english.String
		h.Grade = grade.String
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, qerr(fmt.Errorf("rows err: %w", err))
	}
	return out, nil
}

// FindOrphans lists hadith whose chapter, or section when one is set,
// does not exist.
func (r *Repo) FindOrphans(ctx context.Context) ([]models.Orphan, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT h.book_id, h.chapter_id, h.section_id, h.hadith_id,
		       CASE WHEN c.chapter_id IS NULL THEN 'missing chapter' ELSE 'missing section' END
		FROM hadith h
		LEFT JOIN chapter c
		  ON c.book_id = h.book_id AND c.chapter_id = h.chapter_id
		LEFT JOIN section s
		  ON s.book_id = h.book_id AND s.chapter_id = h.chapter_id AND s.section_id = h.section_id
		WHERE c.chapter_id IS NULL
		   OR (h.section_id IS NOT NULL AND s.section_id IS NULL)
		ORDER BY h.book_id, h.chapter_id, h.hadith_id
	`)
	if err != nil {
		return nil, &QueryError{Op: "find orphans", Err: err}
	}
	defer rows.Close()

	var out []models.Orphan
	for rows.Next() {
		var (
			o       models.Orphan
			section sql.NullInt64
		)
		if err := rows.Scan(&o.BookID, &o.ChapterID, &section, &o.HadithID, &o.Reason); err != nil {
			return nil, &QueryError{Op: "find orphans", Err: fmt.Errorf("scan: %w", err)}
		}
		if section.Valid {
			id := section.Int64
			o.SectionID = &id
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Op: "find orphans", Err: fmt.Errorf("rows err: %w", err)}
	}
	return out, nil
}
