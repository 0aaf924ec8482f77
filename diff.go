// diff.go – line-level diff engine
package logfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgryski/go-farm"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff computes the edit script that transforms the lines of a into the lines
// of b.
//
// Lines are compared through opts.ComparisonKey, so lines that only differ in
// an ignored way are treated as equal and never show up in the script. The
// result is ordered by strictly increasing SeekPosition; consecutive
// deltas are always separated by at least one unchanged base line.
//
// The alignment is a Myers shortest edit sequence computed by
// github.com/hexops/gotextdiff. Among equal-cost alignments the algorithm
// always takes the deletion before the insertion, which makes the output
// stable for identical input.
//
// An empty result means the two files are equal under opts. A failure of the
// aligner is reported as ErrDiffComputation.
func Diff(a, b []LineRecord, opts CompareOptions) ([]Delta, error) {
	runs, err := alignLines(a, b, opts)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	deltas := make([]Delta, 0, len(runs))
	for _, r := range runs {
		deltas = append(deltas, r.delta(a, b))
	}
	return deltas, nil
}

// DiffBytes tokenizes both buffers and runs Diff on the result.
func DiffBytes(oldB, newB []byte, opts CompareOptions) ([]Delta, error) {
	if !opts.normalizes() && bytes.Equal(oldB, newB) {
		return nil, nil
	}
	return Diff(TokenizeLines(oldB), TokenizeLines(newB), opts)
}

// changeRun is a maximal block of consecutive changed lines: a[aStart:aEnd]
// is replaced by b[bStart:bEnd]. Either side may be empty, but not both.
type changeRun struct {
	aStart, aEnd int
	bStart, bEnd int
}

// delta converts the run into a byte-anchored edit record.
//
// Inserts anchor at the end of the preceding base line (or at offset 0 when
// inserting before the first line) so the payload lands exactly between two
// existing lines.
func (r changeRun) delta(a, b []LineRecord) Delta {
	var d Delta
	switch {
	case r.aStart == r.aEnd:
		d.Type = EditInsert
		if r.aStart > 0 {
			d.SeekPosition = a[r.aStart-1].End()
		}
	case r.bStart == r.bEnd:
		d.Type = EditDelete
		d.SeekPosition = a[r.aStart].Offset
		d.DeletedByteCount = a[r.aEnd-1].End() - d.SeekPosition
		return d
	default:
		d.Type = EditReplace
		d.SeekPosition = a[r.aStart].Offset
		d.DeletedByteCount = a[r.aEnd-1].End() - d.SeekPosition
	}

	n := 0
	for _, ln := range b[r.bStart:r.bEnd] {
		n += len(ln.Content)
	}
	payload := make([]byte, 0, n)
	for _, ln := range b[r.bStart:r.bEnd] {
		payload = append(payload, ln.Content...)
	}
	d.Inserted = payload
	d.InsertedByteCount = uint32(n)
	return d
}

// alignLines interns every line by comparison key, runs the Myers aligner on
// the resulting token streams, and groups the edits into change runs.
func alignLines(a, b []LineRecord, opts CompareOptions) ([]changeRun, error) {
	in := newLineInterner(opts, len(a)+len(b))
	aIDs, before := in.tokens(a)
	bIDs, after := in.tokens(b)
	if before == after {
		return nil, nil
	}

	edits := myers.ComputeEdits(span.URIFromPath(""), before, after)

	var (
		runs   []changeRun
		cur    *changeRun
		ai, bi int
	)
	for _, e := range edits {
		start := e.Span.Start().Line() - 1
		end := e.Span.End().Line() - 1
		if start < ai || end < start || end > len(a) {
			return nil, fmt.Errorf("%w: edit [%d,%d) out of order at line %d", ErrDiffComputation, start, end, ai)
		}
		if cur == nil || start != ai {
			if cur != nil {
				runs = append(runs, *cur)
			}
			if err := checkEqualSpan(aIDs, bIDs, ai, bi, start-ai); err != nil {
				return nil, err
			}
			bi += start - ai
			cur = &changeRun{aStart: start, aEnd: start, bStart: bi, bEnd: bi}
		}
		ai = end
		bi += strings.Count(e.NewText, "\n")
		cur.aEnd = ai
		cur.bEnd = bi
	}
	if cur != nil {
		runs = append(runs, *cur)
	}

	if len(a)-ai != len(b)-bi {
		return nil, fmt.Errorf("%w: unbalanced trailer (%d base lines, %d revised lines)", ErrDiffComputation, len(a)-ai, len(b)-bi)
	}
	if err := checkEqualSpan(aIDs, bIDs, ai, bi, len(a)-ai); err != nil {
		return nil, err
	}
	return runs, nil
}

// checkEqualSpan verifies that the n lines the aligner left untouched really
// are equal on both sides.
func checkEqualSpan(aIDs, bIDs []int, ai, bi, n int) error {
	if bi+n > len(bIDs) {
		return fmt.Errorf("%w: revised side exhausted at line %d", ErrDiffComputation, bi)
	}
	for i := 0; i < n; i++ {
		if aIDs[ai+i] != bIDs[bi+i] {
			return fmt.Errorf("%w: lines %d and %d aligned but differ", ErrDiffComputation, ai+i, bi+i)
		}
	}
	return nil
}

// lineInterner maps comparison keys to small dense integers.
//
// Keys are bucketed by their farm fingerprint and confirmed with an exact
// byte comparison, so fingerprint collisions never merge distinct lines.
type lineInterner struct {
	opts    CompareOptions
	buckets map[uint64][]int
	keys    [][]byte
}

func newLineInterner(opts CompareOptions, hint int) *lineInterner {
	return &lineInterner{
		opts:    opts,
		buckets: make(map[uint64][]int, hint),
		keys:    make([][]byte, 0, hint),
	}
}

// id returns the token for line, allocating a new one for unseen keys.
func (in *lineInterner) id(line []byte) int {
	key := in.opts.ComparisonKey(line)
	fp := farm.Fingerprint64(key)
	for _, id := range in.buckets[fp] {
		if bytes.Equal(in.keys[id], key) {
			return id
		}
	}
	id := len(in.keys)
	in.keys = append(in.keys, key)
	in.buckets[fp] = append(in.buckets[fp], id)
	return id
}

// tokens interns every line and renders the token stream as newline
// separated decimal ids, the input form the Myers aligner expects.
func (in *lineInterner) tokens(lines []LineRecord) ([]int, string) {
	ids := make([]int, len(lines))
	var sb strings.Builder
	sb.Grow(len(lines) * 4)
	var scratch [20]byte
	for i, ln := range lines {
		ids[i] = in.id(ln.Content)
		sb.Write(strconv.AppendInt(scratch[:0], int64(ids[i]), 10))
		sb.WriteByte('\n')
	}
	return ids, sb.String()
}
