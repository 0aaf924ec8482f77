package logfile

import (
	"fmt"
	"os"
	"time"
)

// Engine runs file comparisons and three-way merges.
//
// An Engine holds only configuration and keeps no file state between calls;
// it is safe for concurrent use as long as two calls never write the same
// output path. The zero value is not usable, construct one with NewEngine.
type Engine struct {
	log     Logger
	fs      FileSystem
	now     func() time.Time
	tempDir string

	// opts are the comparison modes used by MergeFiles for both of its
	// comparisons.
	opts CompareOptions

	// cacheSize bounds the per-merge cache of tokenized inputs.
	cacheSize int

	profiling *ProfilingConfig
	prof      *profiler
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithLogger routes the engine's diagnostics to l. A nil l discards them.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = DiscardLogger
		}
		e.log = l
	}
}

// WithFileSystem replaces the host file system.
func WithFileSystem(fs FileSystem) Option {
	return func(e *Engine) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithClock sets the timestamp source written into edit-script headers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTempDir sets the directory for intermediate merge files. The empty
// string selects os.TempDir.
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// WithCompareOptions sets the comparison modes MergeFiles uses.
func WithCompareOptions(opts CompareOptions) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithLineCacheSize bounds the number of tokenized files a single merge
// keeps so that the ancestor is read once. Zero or a negative size disables
// the cache.
func WithLineCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// NewEngine returns an Engine that logs through glog, reads and writes the
// host file system, and lets each merge reuse the tokenized ancestor. Engines built
// with WithProfiling must be closed.
//
// Example:
//
//	eng, err := NewEngine(
//	    WithLogger(DiscardLogger),
//	    WithCompareOptions(CompareOptions{IgnoreEOLChanges: true}),
//	)
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		log:       GlogLogger{},
		fs:        OSFileSystem{},
		now:       time.Now,
		cacheSize: defaultLineCacheEntries,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.startProfiling(); err != nil {
		return nil, err
	}
	return e, nil
}

// load returns the bytes and line records of path, from lc when the file has
// not changed since it was last tokenized there. lc may be nil.
func (e *Engine) load(path string, lc *lineCache) (*tokenizedFile, error) {
	fi, err := e.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	if err := checkOffsetRange(fi.Size()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileAccess, path, err)
	}

	k := keyFor(path, fi.Size(), fi.ModTime())
	if tf, ok := lc.lookup(k); ok {
		return tf, nil
	}

	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFileAccess, path, err)
	}
	tf := &tokenizedFile{data: data, lines: TokenizeLines(data)}
	lc.add(k, tf)
	return tf, nil
}

// checkInputs verifies every path names a readable regular file.
func (e *Engine) checkInputs(paths ...string) error {
	for _, p := range paths {
		if err := e.fs.CheckReadable(p); err != nil {
			return fmt.Errorf("%w: %v", ErrFileAccess, err)
		}
	}
	return nil
}

// writeOutput creates path and fills it through write. On any failure the
// partial file is removed before the error is returned.
func (e *Engine) writeOutput(path string, write func(f WritableFile) error) (err error) {
	f, err := e.fs.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrFileAccess, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %v", ErrFileAccess, path, cerr)
		}
		if err != nil {
			e.discard(path)
		}
	}()
	if werr := write(f); werr != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFileAccess, path, werr)
	}
	return nil
}

// discard removes a partial or temporary file, logging when that fails.
func (e *Engine) discard(path string) {
	if err := e.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		e.log.Warnf("remove %s: %v", path, err)
	}
}

const maxFileSize = 1<<32 - 1

// checkOffsetRange rejects inputs whose byte offsets do not fit the 32-bit
// seek positions of an edit script.
func checkOffsetRange(size int64) error {
	if size > maxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds 32-bit offsets", ErrEditOutOfRange, size)
	}
	return nil
}
