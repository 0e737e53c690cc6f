package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a reference points at nothing
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidKey is returned for keys that are empty or escape the root
var ErrInvalidKey = errors.New("invalid artifact key")

// Backend defines the interface for run artifact storage (screenshots,
// rendered reports)
type Backend interface {
	// Store saves an artifact under its key and returns a reference to it
	Store(ctx context.Context, artifact *Artifact) (*Reference, error)

	// Retrieve gets artifact content by reference
	Retrieve(ctx context.Context, ref *Reference) (*Artifact, error)

	// Delete removes an artifact
	Delete(ctx context.Context, ref *Reference) error

	// Exists checks if an artifact exists
	Exists(ctx context.Context, ref *Reference) (bool, error)

	// List returns the artifacts whose key starts with prefix
	List(ctx context.Context, prefix string) ([]*Reference, error)

	// GetInfo returns backend information
	GetInfo() *BackendInfo

	// HealthCheck verifies backend is operational
	HealthCheck(ctx context.Context) error
}

// Artifact is the content to be stored. Key is a slash separated relative
// path such as "login/row-2/fail/row-2_2026-01-02_15-04-05.000.png".
type Artifact struct {
	Key         string
	ContentType string
	Content     []byte
	Metadata    map[string]string
	CreatedTime time.Time
}

// Reference points to stored content
type Reference struct {
	Key         string
	Backend     string
	Location    string
	ContentType string
	Size        int64
	Checksum    string
	CreatedTime time.Time
}

// BackendInfo provides information about a storage backend
type BackendInfo struct {
	Name         string
	Type         string
	Capabilities []string
	Status       string
	Statistics   *BackendStats
}

// BackendStats contains usage statistics
type BackendStats struct {
	TotalFiles int64
	TotalSize  int64
}
