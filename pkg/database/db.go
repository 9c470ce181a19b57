package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	Path string
}

func DefaultConfig() Config {
	// the export always runs next to its source database
	return Config{Path: "hadith.db"}
}

// ConnectionError reports that the source database could not be opened.
// It is always fatal for a run.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// dsn builds a read-only sqlite URI. mode=ro refuses to create a missing
// file, so a typo in the path surfaces at Ping instead of silently
// producing an empty database.
func dsn(path string) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("_query_only", "true")

	// '?' and '#' in a directory name would otherwise end the path early
	segs := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return "file:" + strings.Join(segs, "/") + "?" + q.Encode()
}

func Open(cfg Config) (*sql.DB, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, &ConnectionError{Path: cfg.Path, Err: fmt.Errorf("stat: %w", err)}
	}

	db, err := sql.Open("sqlite3", dsn(cfg.Path))
	if err != nil {
		return nil, &ConnectionError{Path: cfg.Path, Err: fmt.Errorf("open sqlite: %w", err)}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Path: cfg.Path, Err: fmt.Errorf("ping sqlite: %w", err)}
	}

	if err := CheckSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Path: cfg.Path, Err: err}
	}

	return db, nil
}

func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	return db
}
