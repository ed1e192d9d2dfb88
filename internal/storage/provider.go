// Package storage is the rooted view of the local document directory.
package storage

import "time"

// DocumentInfo describes one JSON document in the directory.
type DocumentInfo struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider reads and writes files relative to a root directory.
type Provider interface {
	// List returns every .json file under the root.
	List() ([]DocumentInfo, error)
	// Read returns the raw bytes at path. A missing file wraps apperr.ErrNotFound.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// Root is the absolute directory path.
	Root() string
}
