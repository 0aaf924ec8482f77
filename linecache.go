// linecache.go
//
// Tokenized-file cache for a single three-way merge.
// The cache maps *file identity* → *file bytes plus line records* so that a
// merge, which compares the common ancestor against both descendants and then
// applies the merged edits to it, reads and tokenizes the ancestor only once.
// A cache is created per merge and dropped when the merge returns, so file
// contents never carry over from one call to the next.
//
// The implementation uses a bounded LRU cache; files above lineCacheMaxBytes
// are never cached so that one huge input cannot evict the working set.

package logfile

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultLineCacheEntries = 4
	lineCacheMaxBytes       = 16 << 20 // 16 MiB
)

// fileKey identifies one version of a file on disk.
type fileKey struct {
	path    string
	size    int64
	modTime int64
}

// tokenizedFile holds a file's bytes and the line records that alias them.
// Both must be treated as immutable once cached.
type tokenizedFile struct {
	data  []byte
	lines []LineRecord
}

// lineCache is safe for concurrent use. A nil *lineCache is valid and caches
// nothing.
type lineCache struct {
	entries *lru.Cache[fileKey, *tokenizedFile]
}

// newLineCache returns a cache holding up to size files, or nil when size is
// not positive.
func newLineCache(size int) (*lineCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[fileKey, *tokenizedFile](size)
	if err != nil {
		return nil, err
	}
	return &lineCache{entries: c}, nil
}

func keyFor(path string, size int64, mod time.Time) fileKey {
	return fileKey{path: path, size: size, modTime: mod.UnixNano()}
}

func (c *lineCache) lookup(k fileKey) (*tokenizedFile, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(k)
}

func (c *lineCache) add(k fileKey, tf *tokenizedFile) {
	if c == nil || len(tf.data) > lineCacheMaxBytes {
		return
	}
	c.entries.Add(k, tf)
}

func (c *lineCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
