// Package storage enumerates and reads the files of a collection root.
package storage

import "time"

// File describes one file matched by a collection pattern.
type File struct {
	Path    string    // absolute path
	RelPath string    // slash-separated path relative to the root
	Size    int64
	ModTime time.Time
}

// Provider is the interface for collection file access.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns every regular file under the root whose relative path matches pattern.
	List(pattern string) ([]File, error)
	// Read returns the raw bytes of the file at rel (relative to the root).
	Read(rel string) ([]byte, error)
}
