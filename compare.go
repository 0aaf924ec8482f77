// compare.go
//
// Two-way file comparison.
// CompareFiles reads two files, aligns their lines, and writes the resulting
// edit script to an output path. The script is written even when the files
// are equal, in which case it consists of the header alone; callers tell the
// two outcomes apart through the returned boolean.
//
// Failure is all-or-nothing: inputs are checked before any work begins, and
// an output that was only partly written is removed before the error is
// returned.

package logfile

import (
	"fmt"
	"io"
)

// CompareFiles computes the edit script that turns pathA into pathB and
// writes it to outPath.
//
// The boolean result reports whether the files are equal under opts. Errors
// match ErrFileAccess or ErrDiffComputation through errors.Is.
func (e *Engine) CompareFiles(pathA, pathB, outPath string, opts CompareOptions) (bool, error) {
	equal, err := e.compare(pathA, pathB, outPath, opts, nil)
	if err != nil {
		e.log.Warnf("compare %s %s: %v", pathA, pathB, err)
		return false, err
	}
	return equal, nil
}

// compare does the work of CompareFiles, reading inputs through lc.
func (e *Engine) compare(pathA, pathB, outPath string, opts CompareOptions, lc *lineCache) (bool, error) {
	if err := e.checkInputs(pathA, pathB); err != nil {
		return false, err
	}

	a, err := e.load(pathA, lc)
	if err != nil {
		return false, err
	}
	b, err := e.load(pathB, lc)
	if err != nil {
		return false, err
	}

	deltas, err := Diff(a.lines, b.lines, opts)
	if err != nil {
		return false, fmt.Errorf("compare %s %s: %w", pathA, pathB, err)
	}

	script := &EditScript{
		Header: EditHeader{
			BaseFileSize: uint32(len(a.data)),
			TimeOfTarget: e.now(),
		},
		Deltas: deltas,
	}
	if err := e.writeOutput(outPath, func(w WritableFile) error {
		return WriteEditScript(w, script)
	}); err != nil {
		return false, err
	}

	e.log.Debugf("compare %s %s: %d edits", pathA, pathB, len(deltas))
	return script.Equal(), nil
}

// RunCompare is the command form of CompareFiles: args must hold exactly the
// two inputs and the output path.
func (e *Engine) RunCompare(args []string, opts CompareOptions) (bool, error) {
	if len(args) != 3 {
		return false, fmt.Errorf("%w: compare takes 3 paths, got %d", ErrInvalidArguments, len(args))
	}
	return e.CompareFiles(args[0], args[1], args[2], opts)
}

// CompareFiles runs Engine.CompareFiles on an Engine with default settings.
func CompareFiles(pathA, pathB, outPath string, opts CompareOptions) (bool, error) {
	e, err := NewEngine()
	if err != nil {
		return false, err
	}
	return e.CompareFiles(pathA, pathB, outPath, opts)
}

// CompareBytes writes to w the edit script that turns a into b, stamping the
// header with the engine's clock. It reports whether a and b are equal.
func (e *Engine) CompareBytes(w io.Writer, a, b []byte, opts CompareOptions) (bool, error) {
	for _, buf := range [][]byte{a, b} {
		if err := checkOffsetRange(int64(len(buf))); err != nil {
			return false, err
		}
	}
	deltas, err := DiffBytes(a, b, opts)
	if err != nil {
		return false, err
	}
	s := &EditScript{
		Header: EditHeader{BaseFileSize: uint32(len(a)), TimeOfTarget: e.now()},
		Deltas: deltas,
	}
	if err := WriteEditScript(w, s); err != nil {
		return false, err
	}
	return s.Equal(), nil
}
