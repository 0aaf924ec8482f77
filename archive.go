// archive.go
//
// Cached access to archive header information.
// ArchiveSet maps *archive paths* → *parsed HeaderInfo* so that repeated
// questions about the same archive (its labels, attributes, lock count) do
// not re-read and re-verify the file. Entries are held in an adaptive
// replacement cache (ARC), which balances recently and frequently used
// archives.
//
// Update rewrites the header area of an archive and leaves the revision data
// that follows it untouched. The new file is written next to the old one and
// renamed over it, so a failed update never leaves a half-written archive.
// A header that fails checksum verification is never cached.

package logfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/golang-lru/arc/v2"
)

const defaultArchiveCacheSize = 256

// ArchiveSet reads and updates the header info of archive files.
//
// HeaderInfo values returned by an ArchiveSet are shared with its cache;
// callers that modify one must hand it back through Update. All methods are
// safe for concurrent use.
type ArchiveSet struct {
	fs  FileSystem
	log Logger

	// mu serializes Update so that two writers never interleave on the same
	// archive through this set.
	mu sync.Mutex

	cache *arc.ARCCache[string, *HeaderInfo]
}

// NewArchiveSet returns an ArchiveSet that caches up to size header infos.
// A non-positive size selects the default.
func NewArchiveSet(fs FileSystem, log Logger, size int) (*ArchiveSet, error) {
	if fs == nil {
		fs = OSFileSystem{}
	}
	if log == nil {
		log = DiscardLogger
	}
	if size <= 0 {
		size = defaultArchiveCacheSize
	}
	c, err := arc.NewARC[string, *HeaderInfo](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create ARC cache: %w", err)
	}
	return &ArchiveSet{fs: fs, log: log, cache: c}, nil
}

// HeaderInfo returns the header info of the archive at path.
func (s *ArchiveSet) HeaderInfo(path string) (*HeaderInfo, error) {
	key := filepath.Clean(path)
	if hi, ok := s.cache.Get(key); ok {
		return hi, nil
	}
	hi, err := s.read(key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, hi)
	return hi, nil
}

func (s *ArchiveSet) read(path string) (*HeaderInfo, error) {
	f, err := s.fs.Open(path, os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	defer f.Close()

	hi, err := ReadHeaderInfo(f)
	if err != nil {
		if errors.Is(err, ErrChecksumMismatch) {
			s.log.Errorf("archive %s: %v", path, err)
		}
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}
	return hi, nil
}

// Update writes hi as the header info of the archive at path. The archive is
// created when it does not exist yet; otherwise everything after its current
// header area is preserved.
func (s *ArchiveSet) Update(path string, hi *HeaderInfo) (err error) {
	key := filepath.Clean(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(key)

	tail, err := s.revisionData(key)
	if err != nil {
		return err
	}

	tmp, err := s.fs.CreateTemp(filepath.Dir(key), filepath.Base(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rerr := s.fs.Remove(tmp.Name()); rerr != nil && !os.IsNotExist(rerr) {
				s.log.Warnf("remove %s: %v", tmp.Name(), rerr)
			}
		}
	}()

	if _, err = hi.WriteTo(tmp); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrFileAccess, tmp.Name(), err)
	}
	if _, err = tmp.Write(tail); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrFileAccess, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrFileAccess, tmp.Name(), err)
	}
	if err = s.fs.Rename(tmp.Name(), key); err != nil {
		return fmt.Errorf("%w: %v", ErrFileAccess, err)
	}

	s.cache.Add(key, hi)
	return nil
}

// revisionData returns the bytes of the archive at path that follow its
// header area, or nil when the archive does not exist yet.
func (s *ArchiveSet) revisionData(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	old, err := ReadHeaderInfo(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}
	n := old.EncodedSize()
	if n > len(data) {
		return nil, fmt.Errorf("archive %s: header area of %d bytes exceeds file: %w", path, n, io.ErrUnexpectedEOF)
	}
	return data[n:], nil
}

// Invalidate drops the cached header info of path.
func (s *ArchiveSet) Invalidate(path string) { s.cache.Remove(filepath.Clean(path)) }

// Cached reports whether the header info of path is currently cached.
func (s *ArchiveSet) Cached(path string) bool { return s.cache.Contains(filepath.Clean(path)) }

// Purge empties the cache.
func (s *ArchiveSet) Purge() { s.cache.Purge() }
