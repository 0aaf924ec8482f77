package main

import (
	"path/filepath"
	"testing"

	logfile "github.com/ahrav/go-logfile"
)

func TestNewArchive(t *testing.T) {
	hi, err := newArchive()
	if err != nil {
		t.Fatalf("newArchive failed: %v", err)
	}

	if got := hi.Header.LatestTrunkRevision(); got != "1.1" {
		t.Errorf("Expected trunk tip 1.1, got %s", got)
	}
	if !hi.Header.Attributes.IsCompression() {
		t.Error("Expected compression attribute to be set")
	}
	if len(hi.Labels()) != 2 {
		t.Fatalf("Expected 2 labels, got %d", len(hi.Labels()))
	}

	tip, ok := hi.FindLabel("tip")
	if !ok {
		t.Fatal("Expected to find label tip")
	}
	if !tip.IsFloating() {
		t.Error("Expected tip to be a floating label")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	hi, err := newArchive()
	if err != nil {
		t.Fatalf("newArchive failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "a.arc")
	set, err := logfile.NewArchiveSet(nil, logfile.DiscardLogger, 4)
	if err != nil {
		t.Fatalf("NewArchiveSet failed: %v", err)
	}
	if err := set.Update(path, hi); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	set.Purge()
	got, err := set.HeaderInfo(path)
	if err != nil {
		t.Fatalf("HeaderInfo failed: %v", err)
	}
	if got.Owner() != "docs" {
		t.Errorf("Expected owner docs, got %q", got.Owner())
	}
	if got.Header != hi.Header {
		t.Errorf("Header mismatch:\n got  %+v\n want %+v", got.Header, hi.Header)
	}
}

func TestStoreRevision(t *testing.T) {
	attrs := logfile.DefaultAttributes.With(logfile.AttrCompression, true)
	oldRev := []byte("a\nb\nc\n")
	newRev := []byte("a\nB\nc\n")

	stored, raw, err := storeRevision(attrs, oldRev, newRev)
	if err != nil {
		t.Fatalf("storeRevision failed: %v", err)
	}

	back, err := logfile.LoadRevision(attrs, stored)
	if err != nil {
		t.Fatalf("LoadRevision failed: %v", err)
	}
	if string(back) != string(raw) {
		t.Errorf("Loaded revision differs from the original script")
	}

	out, err := logfile.ApplyEditScriptBytes(oldRev, back)
	if err != nil {
		t.Fatalf("ApplyEditScriptBytes failed: %v", err)
	}
	if string(out) != string(newRev) {
		t.Errorf("Expected %q, got %q", newRev, out)
	}
}
