// Package storage manages the scratch directory that holds in-progress
// capture targets.
package storage

import "io"

// File is an open capture target. WriteAt is used to patch headers once the
// final length is known.
type File interface {
	io.Writer
	io.WriterAt
	io.Closer
	Sync() error
}

// Provider is the interface for scratch file operations. All names are
// relative to the scratch root.
type Provider interface {
	// Create creates or truncates the file at name.
	Create(name string) (File, error)
	// Read returns the raw bytes of the file at name.
	Read(name string) ([]byte, error)
	// Delete removes the file at name.
	Delete(name string) error
	// List returns the names of regular files directly under the root whose
	// name ends in suffix.
	List(suffix string) ([]string, error)
}
