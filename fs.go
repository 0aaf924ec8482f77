// fs.go
//
// File access used by the compare and merge operations.
// Inputs are read through read-only memory maps and copied out, so a
// tokenized buffer never aliases a mapping that might be unmapped underneath
// it. Outputs are created with os and written through a buffered writer.
// Tests substitute their own FileSystem to inject faults.

package logfile

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// WritableFile is an output opened by a FileSystem.
type WritableFile interface {
	io.Writer
	io.Closer
	Name() string
}

// File is a random-access file opened by a FileSystem.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// FileSystem defines the file operations the engine depends on.
type FileSystem interface {
	// Open opens a file using the os.O_* flags in flag.
	Open(name string, flag int) (File, error)

	// ReadFile returns the full contents of the named file.
	ReadFile(name string) ([]byte, error)

	// CheckReadable reports an error when name does not exist, is a
	// directory, or cannot be opened for reading.
	CheckReadable(name string) error

	// Create creates or truncates the named file.
	Create(name string) (WritableFile, error)

	// CreateTemp creates a new uniquely named file in dir.
	CreateTemp(dir, pattern string) (WritableFile, error)

	// Remove removes the named file.
	Remove(name string) error

	// Rename renames oldpath to newpath, replacing newpath if it exists.
	Rename(oldpath, newpath string) error

	// Stat describes the named file.
	Stat(name string) (os.FileInfo, error)
}

// OSFileSystem is the FileSystem backed by the host operating system.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

func (OSFileSystem) Open(name string, flag int) (File, error) {
	return os.OpenFile(name, flag, 0666)
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	ra, err := mmap.Open(name)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	buf := make([]byte, ra.Len())
	if len(buf) == 0 {
		return buf, nil
	}
	if _, err := ra.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func (OSFileSystem) CheckReadable(name string) error {
	fi, err := os.Stat(name)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	return f.Close()
}

func (OSFileSystem) Create(name string) (WritableFile, error) { return os.Create(name) }

func (OSFileSystem) CreateTemp(dir, pattern string) (WritableFile, error) {
	return os.CreateTemp(dir, pattern)
}

func (OSFileSystem) Remove(name string) error { return os.Remove(name) }

func (OSFileSystem) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (OSFileSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
