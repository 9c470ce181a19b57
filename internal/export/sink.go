package export

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Sink is where an export run puts its files. Names are slash-separated
// and relative to the sink's root.
type Sink interface {
	MkdirAll(dir string) error
	WriteFile(name string, data []byte) error
	// Remove deletes a file or a whole directory. A missing name is not
	// an error.
	Remove(name string) error
}

// DirSink writes under a directory on disk. Files are written to a
// temporary name and renamed into place, so a reader never sees a
// half-written archive or manifest.
type DirSink struct {
	Root string
}

func (s DirSink) MkdirAll(dir string) error {
	full := filepath.Join(s.Root, filepath.FromSlash(dir))
	if err := os.MkdirAll(full, 0o755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: full, Err: err}
	}
	return nil
}

func (s DirSink) WriteFile(name string, data []byte) error {
	full := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: filepath.Dir(full), Err: err}
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return &FilesystemError{Op: "rename", Path: full, Err: err}
	}
	return nil
}

func (s DirSink) Remove(name string) error {
	full := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.RemoveAll(full); err != nil {
		return &FilesystemError{Op: "remove", Path: full, Err: err}
	}
	return nil
}

// MemSink keeps files in memory.
type MemSink struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte
}

func NewMemSink() *MemSink {
	return &MemSink{dirs: make(map[string]bool), files: make(map[string][]byte)}
}

func (s *MemSink) MkdirAll(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for d := path.Clean(dir); d != "." && d != "/"; d = path.Dir(d) {
		s.dirs[d] = true
	}
	return nil
}

func (s *MemSink) WriteFile(name string, data []byte) error {
	if err := s.MkdirAll(path.Dir(name)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path.Clean(name)] = append([]byte(nil), data...)
	return nil
}

func (s *MemSink) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = path.Clean(name)
	prefix := name + "/"
	for f := range s.files {
		if f == name || strings.HasPrefix(f, prefix) {
			delete(s.files, f)
		}
	}
	for d := range s.dirs {
		if d == name || strings.HasPrefix(d, prefix) {
			delete(s.dirs, d)
		}
	}
	return nil
}

// ReadFile returns a copy of a stored file.
func (s *MemSink) ReadFile(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path.Clean(name)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Names lists stored files in lexical order.
func (s *MemSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for n := range s.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
