// merge.go
//
// Three-way merge of two descendants of a common ancestor.
// A merge runs through four states:
//
//	Validating → ComparingBoth → Merging → Applying
//
// ComparingBoth diffs the ancestor against each descendant into its own
// temporary edit script. Merging reads both scripts back into a single list
// ordered by (seek position, source) and rejects the merge as soon as one
// edit starts at or before the point where the previous edit's affected range
// ends. Applying then splices the merged edits into the ancestor in one pass.
//
// A conflict is never resolved automatically; the merge fails and the output
// path is not touched. Temporary scripts are removed on every exit path.

package logfile

import (
	"fmt"
	"sort"

	"github.com/davecgh/go-spew/spew"
)

// MergeState is a step of the three-way merge.
type MergeState uint8

const (
	MergeValidating MergeState = iota
	MergeComparingBoth
	MergeMerging
	MergeApplying
	MergeSucceeded
	MergeFailed
)

var mergeStateNames = map[MergeState]string{
	MergeValidating:    "validating",
	MergeComparingBoth: "comparing",
	MergeMerging:       "merging",
	MergeApplying:      "applying",
	MergeSucceeded:     "succeeded",
	MergeFailed:        "failed",
}

func (s MergeState) String() string {
	if n, ok := mergeStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("MergeState(%d)", uint8(s))
}

// MergedEdit is one edit of a merged edit list, tagged with the descendant
// it came from (1 or 2).
type MergedEdit struct {
	Delta
	Source int

	key string
}

// mergeKey orders edits by seek position first and source second. The seek
// position is zero padded so that string order equals numeric order.
func mergeKey(seek uint32, source int) string {
	return fmt.Sprintf("%015d,%d", seek, source)
}

// MergedEditMap is the ordered union of several edit scripts over the same
// base file.
type MergedEditMap []*MergedEdit

// NewMergedEditMap merges scripts into one list. scripts[i] is tagged as
// source i+1.
func NewMergedEditMap(scripts ...[]Delta) MergedEditMap {
	var n int
	for _, s := range scripts {
		n += len(s)
	}
	m := make(MergedEditMap, 0, n)
	for i, s := range scripts {
		for _, d := range s {
			m = append(m, &MergedEdit{Delta: d, Source: i + 1, key: mergeKey(d.SeekPosition, i+1)})
		}
	}
	sort.SliceStable(m, func(i, j int) bool { return m[i].key < m[j].key })
	return m
}

// CheckOverlaps walks the list in order and returns an *OverlapError for the
// first edit that starts at or before the end of the previous edit's
// affected range. The first edit never conflicts.
//
// The affected range of a Replace spans the larger of its deleted and
// inserted counts, so a Replace that grows the text can reject an edit placed
// just after the bytes it consumes. Edits that touch end to end also
// conflict.
func (m MergedEditMap) CheckOverlaps() error {
	var (
		prev    *MergedEdit
		lastEnd uint64
	)
	for _, cur := range m {
		if prev != nil && uint64(cur.SeekPosition) <= lastEnd {
			return &OverlapError{Previous: prev, Current: cur}
		}
		prev = cur
		lastEnd = uint64(cur.SeekPosition) + uint64(cur.AffectedLength())
	}
	return nil
}

// Deltas returns the edits in merge order.
func (m MergedEditMap) Deltas() []Delta {
	out := make([]Delta, len(m))
	for i, me := range m {
		out[i] = me.Delta
	}
	return out
}

// merge carries the per-call state of a three-way merge.
type merge struct {
	e     *Engine
	state MergeState

	base, desc1, desc2, out string
	scripts                 [2]string

	// lines lives for this merge only, so the ancestor is tokenized once
	// and no file contents outlive the call.
	lines *lineCache
}

func (mg *merge) enter(s MergeState) {
	mg.e.log.Debugf("merge %s: %s -> %s", mg.out, mg.state, s)
	mg.state = s
}

// fail records the failing state in the error.
func (mg *merge) fail(err error) error {
	state := mg.state
	mg.enter(MergeFailed)
	return fmt.Errorf("merge %s (%s): %w", mg.out, state, err)
}

// MergeFiles merges the changes desc1 and desc2 made to base and writes the
// result to out.
//
// Both descendants are compared against base with the engine's
// CompareOptions. An unreadable input matches both ErrInvalidArguments and
// ErrFileAccess; later failures match ErrFileAccess, ErrComparisonFailed, or
// ErrOverlapConflict. An overlap is reported as *OverlapError naming both
// edits. out is written only when the merge succeeds.
func (e *Engine) MergeFiles(base, desc1, desc2, out string) error {
	mg := &merge{e: e, state: MergeValidating, base: base, desc1: desc1, desc2: desc2, out: out}
	defer mg.cleanup()

	if err := mg.run(); err != nil {
		err = mg.fail(err)
		e.log.Warnf("%v", err)
		return err
	}
	mg.enter(MergeSucceeded)
	return nil
}

func (mg *merge) run() error {
	e := mg.e
	if err := e.checkInputs(mg.base, mg.desc1, mg.desc2); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	lc, err := newLineCache(e.cacheSize)
	if err != nil {
		return fmt.Errorf("line cache: %w", err)
	}
	mg.lines = lc

	mg.enter(MergeComparingBoth)
	for i, desc := range []string{mg.desc1, mg.desc2} {
		tmp, err := mg.tempScript()
		if err != nil {
			return err
		}
		mg.scripts[i] = tmp
		equal, err := e.compare(mg.base, desc, tmp, e.opts, mg.lines)
		if err != nil {
			return fmt.Errorf("%w: %s against %s: %w", ErrComparisonFailed, desc, mg.base, err)
		}
		e.log.Infof("merge: compared %s against %s (equal=%t)", desc, mg.base, equal)
	}

	mg.enter(MergeMerging)
	var scripts [2][]Delta
	for i, path := range mg.scripts {
		data, err := e.fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrFileAccess, path, err)
		}
		s, err := ParseEditScript(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrComparisonFailed, err)
		}
		scripts[i] = s.Deltas
	}
	merged := NewMergedEditMap(scripts[0], scripts[1])
	if err := merged.CheckOverlaps(); err != nil {
		e.log.Debugf("merged edits:\n%s", spew.Sdump(merged))
		return err
	}

	mg.enter(MergeApplying)
	anc, err := e.load(mg.base, mg.lines)
	if err != nil {
		return err
	}
	result, err := ApplyEditScript(anc.data, merged.Deltas())
	if err != nil {
		return err
	}
	return e.writeOutput(mg.out, func(w WritableFile) error {
		_, err := w.Write(result)
		return err
	})
}

// tempScript allocates an empty, closed temporary file for an intermediate
// edit script.
func (mg *merge) tempScript() (string, error) {
	f, err := mg.e.fs.CreateTemp(mg.e.tempDir, "logfile-merge-*.edit")
	if err != nil {
		return "", fmt.Errorf("%w: temp file: %v", ErrFileAccess, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		mg.e.discard(name)
		return "", fmt.Errorf("%w: temp file: %v", ErrFileAccess, err)
	}
	return name, nil
}

func (mg *merge) cleanup() {
	for _, p := range mg.scripts {
		if p != "" {
			mg.e.discard(p)
		}
	}
}

// RunMerge is the command form of MergeFiles: args must hold exactly the
// ancestor, both descendants, and the output path.
func (e *Engine) RunMerge(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: merge takes 4 paths, got %d", ErrInvalidArguments, len(args))
	}
	return e.MergeFiles(args[0], args[1], args[2], args[3])
}

// MergeFiles runs Engine.MergeFiles on an Engine with default settings.
func MergeFiles(base, desc1, desc2, out string) error {
	e, err := NewEngine()
	if err != nil {
		return err
	}
	return e.MergeFiles(base, desc1, desc2, out)
}
