package logfile

import (
	"bufio"
	"io"
	"sync"
)

// bwPool reuses bufio.Writer instances across edit-script writes. Merges
// serialize two scripts per call, so the 8 KiB buffers add up quickly.
var bwPool = sync.Pool{
	New: func() any { return bufio.NewWriterSize(nil, 8<<10) },
}

// brPool reuses bufio.Reader instances for archive header parsing.
var brPool = sync.Pool{
	New: func() any { return bufio.NewReaderSize(nil, 4<<10) },
}

// getBW obtains a bufio.Writer from the pool and points it at w.
func getBW(w io.Writer) *bufio.Writer {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(w)
	return bw
}

// putBW returns bw to the pool. Any unflushed data is dropped.
func putBW(bw *bufio.Writer) {
	bw.Reset(nil)
	bwPool.Put(bw)
}

// getBR obtains a bufio.Reader from the pool and resets it to r.
func getBR(r io.Reader) *bufio.Reader {
	br := brPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// putBR returns a bufio.Reader to the pool for reuse.
func putBR(br *bufio.Reader) {
	br.Reset(nil)
	brPool.Put(br)
}
