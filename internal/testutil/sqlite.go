// Package testutil builds throwaway hadith databases for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Schema mirrors the tables the exporter reads.
const Schema = `
CREATE TABLE books (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	author       TEXT,
	hadith_count INTEGER
);
CREATE TABLE chapter (
	book_id    INTEGER NOT NULL,
	chapter_id INTEGER NOT NULL,
	number     INTEGER NOT NULL,
	title_en   TEXT,
	title_ar   TEXT,
	PRIMARY KEY (book_id, chapter_id)
);
CREATE TABLE section (
	book_id    INTEGER NOT NULL,
	chapter_id INTEGER NOT NULL,
	section_id INTEGER NOT NULL,
	number     INTEGER NOT NULL,
	title_en   TEXT,
	title_ar   TEXT,
	preface    TEXT,
	PRIMARY KEY (book_id, chapter_id, section_id)
);
CREATE TABLE hadith (
	book_id    INTEGER NOT NULL,
	chapter_id INTEGER NOT NULL,
	section_id INTEGER,
	hadith_id  INTEGER NOT NULL,
	narrator   TEXT,
	text_ar    TEXT,
	text_en    TEXT,
	grade      TEXT,
	PRIMARY KEY (book_id, hadith_id)
);
`

// ScenarioSeed is book 1 with two chapters and book 2 with none.
// Chapter 20 sorts first by number and has no sections; chapter 10 has
// sections 7 then 3 by number. Rows are inserted out of order on purpose.
const ScenarioSeed = `
INSERT INTO books (id, title, author, hadith_count) VALUES
	(2, 'Empty Book', NULL, 0),
	(1, 'Sahih', 'Imam', 6);
INSERT INTO chapter (book_id, chapter_id, number, title_en, title_ar) VALUES
	(1, 10, 2, 'Faith', 'الإيمان'),
	(1, 20, 1, 'Revelation', 'الوحي');
INSERT INTO section (book_id, chapter_id, section_id, number, title_en, title_ar, preface) VALUES
	(1, 10, 3, 2, 'Second section', NULL, NULL),
	(1, 10, 7, 1, 'First section', NULL, 'Preface');
INSERT INTO hadith (book_id, chapter_id, section_id, hadith_id, narrator, text_ar, text_en, grade) VALUES
	(1, 20, NULL, 3, 'Umar', 'ar3', 'en3', 'sahih'),
	(1, 20, NULL, 1, 'Aisha', 'ar1', 'en1', 'sahih'),
	(1, 20, NULL, 2, NULL, 'ar2', 'en2', NULL),
	(1, 10, 7, 5, 'Abu Huraira', 'ar5', 'en5', 'sahih'),
	(1, 10, 7, 4, 'Ibn Umar', 'ar4', 'en4', 'sahih'),
	(1, 10, 3, 6, 'Anas', 'ar6', 'en6', 'hasan');
`

// CreateDB writes a database file under t.TempDir, runs each statement
// batch against it and returns its path. With no batches it applies
// Schema and ScenarioSeed.
func CreateDB(t testing.TB, batches ...string) string {
	t.Helper()

	if len(batches) == 0 {
		batches = []string{Schema, ScenarioSeed}
	}

	path := filepath.Join(t.TempDir(), "hadith.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	for _, batch := range batches {
		if _, err := db.Exec(batch); err != nil {
			t.Fatalf("exec fixture: %v", err)
		}
	}
	return path
}

// OpenDB opens path for reading and closes it when the test ends.
func OpenDB(t testing.TB, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
