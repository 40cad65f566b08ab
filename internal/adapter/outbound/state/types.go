// Package state provides the file-backed key-value store that keeps the
// session between runs.
//
// The session file is a small JSON document. Every write goes through an
// in-process mutex and a cross-process lock, keeps a .bak copy of the previous
// version, and lands via write-tmp, fsync, rename.
package state

import "time"

// CurrentVersion is the schema version written by this package.
const CurrentVersion = "1"

// StoreFile is the document persisted on disk.
type StoreFile struct {
	// Version is the schema version for forward compatibility.
	Version string `json:"version"`

	// Entries are the stored key-value pairs.
	Entries map[string]string `json:"entries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// clone returns a deep copy.
func (f *StoreFile) clone() *StoreFile {
	c := *f
	c.Entries = make(map[string]string, len(f.Entries))
	for k, v := range f.Entries {
		c.Entries[k] = v
	}
	return &c
}
