package export

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"hadithexport/pkg/models"
)

// Mode selects how each book is packaged.
type Mode string

const (
	ModeArchive Mode = "archive"
	ModeTree    Mode = "tree"
)

// FailureMode decides what a failed book does to the run.
type FailureMode string

const (
	// FailFast aborts the run on the first failed book. Archives already
	// written stay on disk; the manifest is not written.
	FailFast FailureMode = "fail-fast"
	// PerBook records the failure in the book's manifest entry and moves on.
	PerBook FailureMode = "per-book"
)

// ParseFailureMode accepts the config spelling of a FailureMode.
// The empty string means FailFast.
func ParseFailureMode(s string) (FailureMode, error) {
	switch FailureMode(s) {
	case "", FailFast:
		return FailFast, nil
	case PerBook:
		return PerBook, nil
	default:
		return "", fmt.Errorf("unknown failure mode %q (want %q or %q)", s, FailFast, PerBook)
	}
}

// Output layout, relative to the sink root.
const (
	ManifestPath = "manifest.json"
	ArchiveDir   = "archives"
	TreeRoot     = "tree"
)

// ManifestFor returns where a run in the given mode writes its manifest.
// Tree runs keep theirs inside the tree so the two layouts never clobber
// each other.
func ManifestFor(mode Mode) string {
	if mode == ModeTree {
		return TreeRoot + "/" + ManifestPath
	}
	return ManifestPath
}

func ArchivePath(bookID int64) string {
	return fmt.Sprintf("%s/book_%d.zip", ArchiveDir, bookID)
}

func TreeDir(bookID int64) string {
	return fmt.Sprintf("%s/book_%d", TreeRoot, bookID)
}

// Notifier receives progress events. The websocket hub and the UDP feed
// implement it.
type Notifier interface {
	BroadcastJSON(v any)
}

// Notifiers sends every event to each of its members in order.
type Notifiers []Notifier

func (ns Notifiers) BroadcastJSON(v any) {
	for _, n := range ns {
		n.BroadcastJSON(v)
	}
}

const (
	EventStarted  = "export.started"
	EventArchived = "book.archived"
	EventFailed   = "book.failed"
	EventFinished = "export.finished"
)

type Event struct {
	Type   string    `json:"type"`
	Mode   Mode      `json:"mode,omitempty"`
	BookID int64     `json:"book_id,omitempty"`
	Books  int       `json:"books,omitempty"`
	Size   int64     `json:"size,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Exporter runs the whole export: every book in turn, then the manifest.
type Exporter struct {
	Store       Store
	Sink        Sink
	Mode        Mode
	FailureMode FailureMode
	Logger      *log.Logger
	Notifier    Notifier

	agg *Aggregator
}

func NewExporter(store Store, sink Sink, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{
		Store:       store,
		Sink:        sink,
		Mode:        ModeArchive,
		FailureMode: FailFast,
		Logger:      logger,
		agg:         NewAggregator(store, logger),
	}
}

// Run exports every book, one at a time, and writes the manifest last.
// Book N is fully written before book N+1 is read.
func (e *Exporter) Run(ctx context.Context) ([]models.ManifestEntry, error) {
	if e.agg == nil {
		e.agg = NewAggregator(e.Store, e.Logger)
	}

	books, err := e.Store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	// The old manifest describes archives this run is about to replace. It
	// must not outlive a run that stops half way.
	manifest := ManifestFor(e.Mode)
	if err := e.Sink.Remove(manifest); err != nil {
		return nil, err
	}

	e.Logger.Printf("[export] starting %s export of %d books", e.Mode, len(books))
	e.notify(Event{Type: EventStarted, Mode: e.Mode, Books: len(books)})

	entries := make([]models.ManifestEntry, 0, len(books))
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := e.exportBook(ctx, b)
		if err != nil {
			e.Logger.Printf("[export] book=%d failed: %v", b.ID, err)
			e.notify(Event{Type: EventFailed, BookID: b.ID, Error: err.Error()})
			e.discard(b.ID)
			if e.FailureMode != PerBook {
				return nil, fmt.Errorf("export book %d: %w", b.ID, err)
			}
			entry = failedEntry(b, err)
		} else {
			e.Logger.Printf("[export] book=%d wrote %s (%s)", b.ID, entry.Archive, entry.SizeHuman)
			e.notify(Event{Type: EventArchived, BookID: b.ID, Size: entry.Size})
		}
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, &SerializationError{Entry: manifest, Err: err}
	}
	if err := e.Sink.WriteFile(manifest, data); err != nil {
		return nil, err
	}

	e.Logger.Printf("[export] wrote %s with %d entries", manifest, len(entries))
	e.notify(Event{Type: EventFinished, Mode: e.Mode, Books: len(entries)})
	return entries, nil
}

func (e *Exporter) exportBook(ctx context.Context, b models.Book) (models.ManifestEntry, error) {
	// The book lands in the manifest verbatim; a value JSON cannot hold
	// (NaN, Inf) must fail this book, not the manifest.
	if _, err := json.Marshal(b); err != nil {
		return models.ManifestEntry{}, &SerializationError{BookID: b.ID, Entry: "manifest entry", Err: err}
	}

	chapters, err := e.Store.ListChapters(ctx, b.ID)
	if err != nil {
		return models.ManifestEntry{}, err
	}

	groups, err := e.agg.Aggregate(ctx, b.ID, chapters)
	if err != nil {
		return models.ManifestEntry{}, err
	}

	if e.Mode == ModeTree {
		dir := TreeDir(b.ID)
		// chapters dropped since the last run must not linger in the tree
		if err := e.Sink.Remove(dir); err != nil {
			return models.ManifestEntry{}, err
		}
		size, err := WriteTree(e.Sink, dir, b, chapters, groups)
		if err != nil {
			return models.ManifestEntry{}, err
		}
		return models.ManifestEntry{
			Book:      b,
			Archive:   dir,
			Size:      size,
			SizeHuman: humanize.Bytes(uint64(size)),
		}, nil
	}

	data, err := BuildArchive(b.ID, chapters, groups)
	if err != nil {
		return models.ManifestEntry{}, err
	}

	name := ArchivePath(b.ID)
	if err := e.Sink.WriteFile(name, data); err != nil {
		return models.ManifestEntry{}, err
	}
	return archiveEntry(b, name, data), nil
}

// bookOutput is the archive or tree directory a book occupies.
func (e *Exporter) bookOutput(bookID int64) string {
	if e.Mode == ModeTree {
		return TreeDir(bookID)
	}
	return ArchivePath(bookID)
}

// discard removes what an earlier run left for a book that just failed,
// so no archive on disk outlives its manifest entry.
func (e *Exporter) discard(bookID int64) {
	name := e.bookOutput(bookID)
	if err := e.Sink.Remove(name); err != nil {
		e.Logger.Printf("[export] book=%d remove stale %s: %v", bookID, name, err)
	}
}

// failedEntry records a failed book. Fields are dropped when the book row
// itself is what could not be encoded.
func failedEntry(b models.Book, err error) models.ManifestEntry {
	if _, merr := json.Marshal(b); merr != nil {
		b = models.Book{ID: b.ID, Title: b.Title}
	}
	return models.ManifestEntry{Book: b, Error: err.Error()}
}

// archiveNamespace scopes the name-based archive ids.
var archiveNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("hadithexport/archive"))

// archiveEntry builds a manifest entry from a committed archive. Its id is
// derived from the content, so an unchanged book keeps the same id.
func archiveEntry(b models.Book, name string, data []byte) models.ManifestEntry {
	sum := blake2b.Sum256(data)
	size := int64(len(data))
	return models.ManifestEntry{
		Book:      b,
		Archive:   name,
		Size:      size,
		SizeHuman: humanize.Bytes(uint64(size)),
		Checksum:  "blake2b-256:" + hex.EncodeToString(sum[:]),
		ArchiveID: uuid.NewSHA1(archiveNamespace, sum[:]).String(),
	}
}

func (e *Exporter) notify(ev Event) {
	if e.Notifier == nil {
		return
	}
	ev.At = time.Now().UTC()
	e.Notifier.BroadcastJSON(ev)
}
