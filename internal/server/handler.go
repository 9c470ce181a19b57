package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"hadithexport/internal/export"
	"hadithexport/pkg/models"
)

// RunFunc performs one export run.
type RunFunc func(ctx context.Context) ([]models.ManifestEntry, error)

type RunStatus struct {
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Books      int       `json:"books"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// Handler serves a finished export directory and can start a new run.
// At most one run is in flight at a time.
type Handler struct {
	OutputDir string
	Run       RunFunc
	Logger    *log.Logger

	mu     sync.Mutex
	status RunStatus
	done   chan struct{}
}

func NewHandler(outputDir string, run RunFunc, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{OutputDir: outputDir, Run: run, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/manifest", h.manifest)                           // GET /manifest
	rg.GET("/books/:id/archive", h.archive)                   // GET /books/:id/archive
	rg.GET("/books/:id/chapters", h.chapters)                 // GET /books/:id/chapters
	rg.GET("/books/:id/chapters/:chapterId", h.chapterGroups) // GET /books/:id/chapters/:chapterId
	rg.GET("/exports/status", h.runStatus)                    // GET /exports/status
}

// RegisterRunRoutes mounts the run trigger; rg carries the auth middleware.
func (h *Handler) RegisterRunRoutes(rg *gin.RouterGroup) {
	rg.POST("/exports", h.startRun) // POST /exports
}

func (h *Handler) path(name string) string {
	return filepath.Join(h.OutputDir, filepath.FromSlash(name))
}

func (h *Handler) manifest(c *gin.Context) {
	p := h.path(export.ManifestPath)
	if _, err := os.Stat(p); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no manifest yet"})
		return
	}
	c.File(p)
}

func (h *Handler) archive(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	name := export.ArchivePath(bookID)
	p := h.path(name)
	if _, err := os.Stat(p); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.FileAttachment(p, filepath.Base(name))
}

func (h *Handler) chapters(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	data, ok := h.readArchive(c, bookID)
	if !ok {
		return
	}
	contents, err := export.ReadArchive(bookID, data)
	if err != nil {
		h.Logger.Printf("[server] book=%d read archive: %v", bookID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive unreadable"})
		return
	}
	c.JSON(http.StatusOK, contents.Chapters)
}

func (h *Handler) chapterGroups(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	chapterID, ok := parseID(c, "chapterId")
	if !ok {
		return
	}
	data, ok := h.readArchive(c, bookID)
	if !ok {
		return
	}
	groups, err := export.ReadChapterGroups(data, bookID, chapterID)
	if err != nil {
		if errors.Is(err, export.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.Logger.Printf("[server] book=%d chapter=%d read archive: %v", bookID, chapterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive unreadable"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) readArchive(c *gin.Context, bookID int64) ([]byte, bool) {
	data, err := os.ReadFile(h.path(export.ArchivePath(bookID)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		}
		return nil, false
	}
	return data, true
}

func (h *Handler) runStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Status())
}

func (h *Handler) startRun(c *gin.Context) {
	if !h.start() {
		c.JSON(http.StatusConflict, gin.H{"error": "export already running"})
		return
	}
	c.JSON(http.StatusAccepted, h.Status())
}

// start launches a run unless one is already going.
func (h *Handler) start() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.Running {
		return false
	}
	h.status = RunStatus{Running: true, StartedAt: time.Now().UTC()}
	h.done = make(chan struct{})

	go h.execute(h.done)
	return true
}

func (h *Handler) execute(done chan struct{}) {
	defer close(done)

	// A run outlives the request that started it.
	entries, err := h.Run(context.Background())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Running = false
	h.status.FinishedAt = time.Now().UTC()
	h.status.Books = len(entries)
	for _, e := range entries {
		if e.Failed() {
			h.status.Failed++
		}
	}
	if err != nil {
		h.status.Error = err.Error()
		h.Logger.Printf("[server] export run failed: %v", err)
	}
}

// Status returns a snapshot of the current or last run.
func (h *Handler) Status() RunStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Wait blocks until the in-flight run, if any, has finished.
func (h *Handler) Wait() {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done != nil {
		<-done
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
