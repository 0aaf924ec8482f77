package logfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.Unix(1_700_000_000, 0) }

// writeFile creates dir/name holding content and returns its path.
func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// newTestEngine returns an Engine that logs into a recordingLogger and keeps
// its temporary files in a per-test directory.
func newTestEngine(t testing.TB, opts ...Option) (*Engine, *recordingLogger) {
	t.Helper()
	rl := &recordingLogger{}
	base := []Option{WithLogger(rl), WithClock(fixedClock), WithTempDir(t.TempDir())}
	e, err := NewEngine(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, rl
}

// recordingLogger keeps every message per level.
type recordingLogger struct {
	mu     sync.Mutex
	debug  []string
	info   []string
	warn   []string
	errors []string
}

func (l *recordingLogger) add(dst *[]string, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(f string, a ...any) { l.add(&l.debug, f, a) }
func (l *recordingLogger) Infof(f string, a ...any)  { l.add(&l.info, f, a) }
func (l *recordingLogger) Warnf(f string, a ...any)  { l.add(&l.warn, f, a) }
func (l *recordingLogger) Errorf(f string, a ...any) { l.add(&l.errors, f, a) }

var errInjected = errors.New("injected write failure")

// faultyFS fails writes to created files after the first failAfter bytes.
type faultyFS struct {
	OSFileSystem
	failAfter int
}

func (f faultyFS) Create(name string) (WritableFile, error) {
	file, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, left: f.failAfter}, nil
}

type faultyFile struct {
	*os.File
	left int
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if len(p) <= f.left {
		f.left -= len(p)
		return f.File.Write(p)
	}
	n, _ := f.File.Write(p[:f.left])
	f.left = 0
	return n, errInjected
}

// applyScript decodes an encoded edit script and applies it to base.
func applyScript(t testing.TB, base []byte, script []byte) []byte {
	t.Helper()
	out, err := ApplyEditScriptBytes(base, script)
	require.NoError(t, err)
	return out
}

// countingFS counts ReadFile calls per path.
type countingFS struct {
	OSFileSystem

	mu    sync.Mutex
	reads map[string]int
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.mu.Lock()
	if c.reads == nil {
		c.reads = make(map[string]int)
	}
	c.reads[name]++
	c.mu.Unlock()
	return c.OSFileSystem.ReadFile(name)
}

func (c *countingFS) readsOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name]
}
