// Package models defines the domain types for Ansuz.
package models

import (
	"time"

	"github.com/starford/ansuz/internal/adf"
)

// Issue is one tracked work item as fetched from the remote tracker. Key is
// unique within a sync run and stable across runs: the same key always maps
// to the same note file.
type Issue struct {
	Key         string        `json:"key"`
	Summary     string        `json:"summary"`
	Type        string        `json:"type,omitempty"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority,omitempty"`
	Link        string        `json:"link"`
	Updated     time.Time     `json:"updated"`
	Description *adf.Document `json:"description,omitempty"`
}

// FileMetadata is a lightweight view of a vault file, as returned by
// storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
