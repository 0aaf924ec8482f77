package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	logfile "github.com/ahrav/go-logfile"
)

func main() {
	dir, err := os.MkdirTemp("", "logfile-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "readme.txt.arc")

	fmt.Println("=== Creating archive header ===")
	hi, err := newArchive()
	if err != nil {
		log.Fatalf("Failed to build header: %v", err)
	}

	set, err := logfile.NewArchiveSet(nil, nil, 8)
	if err != nil {
		log.Fatalf("Failed to create archive set: %v", err)
	}
	if err := set.Update(archive, hi); err != nil {
		log.Fatalf("Failed to write archive: %v", err)
	}
	fmt.Printf("Wrote %s (%d header bytes)\n", filepath.Base(archive), hi.EncodedSize())

	fmt.Println("\n=== Reading it back ===")
	set.Purge()
	got, err := set.HeaderInfo(archive)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}
	fmt.Printf("Owner: %s\n", got.Owner())
	fmt.Printf("Trunk tip: %s\n", got.Header.LatestTrunkRevision())
	fmt.Printf("Attributes: %s\n", got.Header.Attributes)
	for _, l := range got.Labels() {
		fmt.Printf("Label %-10s %-8s sortable=%s\n", l.Label, l.RevisionString(), l.SortableRevisionString())
	}

	fmt.Println("\n=== Storing a revision ===")
	stored, raw, err := storeRevision(got.Header.Attributes,
		[]byte("line one\nline two\nline three\n"),
		[]byte("line one\nline 2\nline three\n"))
	if err != nil {
		log.Fatalf("Failed to store revision: %v", err)
	}
	fmt.Printf("Edit script: %d bytes raw, %d bytes stored\n", len(raw), len(stored))

	back, err := logfile.LoadRevision(got.Header.Attributes, stored)
	if err != nil {
		log.Fatalf("Failed to load revision: %v", err)
	}
	script, err := logfile.ParseEditScript(back)
	if err != nil {
		log.Fatalf("Failed to parse revision: %v", err)
	}
	for _, d := range script.Deltas {
		fmt.Printf("  %s at %d: -%d +%d %q\n", d.Type, d.SeekPosition, d.DeletedByteCount, d.InsertedByteCount, d.Inserted)
	}
}

// newArchive builds the header of a two-revision archive with one fixed and
// one floating label.
func newArchive() (*logfile.HeaderInfo, error) {
	hi := logfile.NewHeaderInfo()
	hi.SetOwner("docs")
	hi.SetModuleDescription("Project readme")
	hi.SetCommentPrefix("# ")
	hi.Header.Attributes = hi.Header.Attributes.With(logfile.AttrCompression, true)
	hi.Header.MajorNumber = 1
	hi.Header.IncrementRevisionCount()
	hi.Header.IncrementRevisionCount()
	hi.Header.IncrementMinorNumber()

	labels := []struct {
		name     string
		rev      string
		floating bool
	}{
		{"release", "1.1", false},
		{"tip", "1.1", true},
	}
	for _, l := range labels {
		info, err := logfile.NewLabelInfo(l.name, l.rev, l.floating, 0)
		if err != nil {
			return nil, err
		}
		hi.AddLabel(info)
	}
	return hi, nil
}

// storeRevision diffs two revisions and returns the edit script both in the
// form the archive stores and as produced by the diff.
func storeRevision(attrs logfile.ArchiveAttributes, oldRev, newRev []byte) (stored, raw []byte, err error) {
	eng, err := logfile.NewEngine(logfile.WithLogger(logfile.DiscardLogger))
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if _, err := eng.CompareBytes(&buf, oldRev, newRev, logfile.CompareOptions{}); err != nil {
		return nil, nil, err
	}
	raw = buf.Bytes()
	stored, err = logfile.StoreRevision(attrs, raw)
	return stored, raw, err
}
