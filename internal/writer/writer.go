package writer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipSink writes each file gzip-compressed to disk, creating parent
// directories as needed.
type GzipSink struct {
	Level int // gzip level; zero means gzip.BestCompression
}

// Open creates path and returns a writer that compresses into it.
func (s GzipSink) Open(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	level := s.Level
	if level == 0 {
		level = gzip.BestCompression
	}
	gz, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip writer for %s: %w", path, err)
	}
	return &gzipFile{gz: gz, f: f}, nil
}

type gzipFile struct {
	gz     *gzip.Writer
	f      *os.File
	closed bool
}

func (g *gzipFile) Write(p []byte) (int, error) {
	return g.gz.Write(p)
}

// Close flushes the gzip stream and syncs the file. Only the first call does work.
func (g *gzipFile) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	gzErr := g.gz.Close()
	syncErr := g.f.Sync()
	closeErr := g.f.Close()
	switch {
	case gzErr != nil:
		return gzErr
	case syncErr != nil:
		return syncErr
	default:
		return closeErr
	}
}

// ReadGzip returns the decompressed contents of a file written by GzipSink.
func ReadGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// MemorySink keeps every file in memory, uncompressed. Used for dry runs.
type MemorySink struct {
	mu     sync.Mutex
	files  map[string][]byte
	opened map[string]int
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files:  make(map[string][]byte),
		opened: make(map[string]int),
	}
}

// Open returns a buffer whose contents are stored under path on Close.
func (m *MemorySink) Open(path string) (io.WriteCloser, error) {
	m.mu.Lock()
	m.opened[path]++
	m.mu.Unlock()
	return &memoryFile{sink: m, path: path}, nil
}

// File returns the stored contents of path.
func (m *MemorySink) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return b, ok
}

// Paths returns the stored paths in order.
func (m *MemorySink) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Opens returns how many times path was opened.
func (m *MemorySink) Opens(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened[path]
}

type memoryFile struct {
	sink   *MemorySink
	path   string
	buf    bytes.Buffer
	closed bool
}

func (f *memoryFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("write to closed file %s", f.path)
	}
	return f.buf.Write(p)
}

func (f *memoryFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.sink.mu.Lock()
	f.sink.files[f.path] = f.buf.Bytes()
	f.sink.mu.Unlock()
	return nil
}
