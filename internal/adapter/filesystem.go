package adapter

import (
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// CreateTemp creates a new temporary file in the directory dir
	CreateTemp(dir, pattern string) (*os.File, error)

	// Open opens the named file for reading
	Open(name string) (*os.File, error)

	// WriteFile writes data to the named file, creating it if necessary
	WriteFile(name string, data []byte, perm os.FileMode) error

	// Remove removes the named file or directory
	Remove(name string) error

	// TempDir returns the default directory to use for temporary files
	TempDir() string
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// CreateTemp creates a new temporary file in the directory dir
func (fs *RealFileSystem) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

// Open opens the named file for reading
func (fs *RealFileSystem) Open(name string) (*os.File, error) {
	return os.Open(name) //nolint:gosec,G304
}

// WriteFile writes data to the named file, creating it if necessary
func (fs *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:gosec,G306
}

// Remove removes the named file or directory
func (fs *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// TempDir returns the default directory to use for temporary files
func (fs *RealFileSystem) TempDir() string {
	return os.TempDir()
}
