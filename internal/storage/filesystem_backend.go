package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const metaSuffix = ".meta"

// FilesystemBackend implements artifact storage under a root directory
type FilesystemBackend struct {
	basePath string
}

type metadataFile struct {
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Checksum    string            `json:"checksum"`
	CreatedTime time.Time         `json:"created_time"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewFilesystemBackend creates a new filesystem storage backend
func NewFilesystemBackend(basePath string) (*FilesystemBackend, error) {
	if basePath == "" {
		return nil, fmt.Errorf("filesystem base path is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	return &FilesystemBackend{basePath: basePath}, nil
}

// Root returns the directory artifacts are written under
func (f *FilesystemBackend) Root() string { return f.basePath }

// cleanKey normalises a key and rejects anything that would leave the root
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") || strings.HasSuffix(cleaned, metaSuffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

func (f *FilesystemBackend) location(key string) string {
	return filepath.Join(f.basePath, filepath.FromSlash(key))
}

// Store writes the artifact and a metadata sidecar next to it
func (f *FilesystemBackend) Store(ctx context.Context, artifact *Artifact) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := cleanKey(artifact.Key)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(artifact.Content)
	checksum := hex.EncodeToString(hash[:])
	created := artifact.CreatedTime
	if created.IsZero() {
		created = time.Now()
	}

	filePath := f.location(key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, artifact.Content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	ref := &Reference{
		Key:         key,
		Backend:     "FS",
		Location:    filePath,
		ContentType: artifact.ContentType,
		Size:        int64(len(artifact.Content)),
		Checksum:    checksum,
		CreatedTime: created,
	}

	meta, err := json.MarshalIndent(metadataFile{
		Key:         key,
		ContentType: ref.ContentType,
		Size:        ref.Size,
		Checksum:    checksum,
		CreatedTime: created,
		Metadata:    artifact.Metadata,
	}, "", "  ")
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filePath+metaSuffix, meta, 0644); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	return ref, nil
}

// Retrieve reads an artifact back, verifying its checksum when the reference
// carries one
func (f *FilesystemBackend) Retrieve(ctx context.Context, ref *Reference) (*Artifact, error) {
	key, err := cleanKey(ref.Key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(f.location(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if ref.Checksum != "" {
		hash := sha256.Sum256(content)
		if got := hex.EncodeToString(hash[:]); got != ref.Checksum {
			return nil, fmt.Errorf("checksum mismatch for %s: have %s, want %s", key, got, ref.Checksum)
		}
	}

	artifact := &Artifact{
		Key:         key,
		ContentType: ref.ContentType,
		Content:     content,
		CreatedTime: ref.CreatedTime,
	}
	if meta, err := f.readMeta(key); err == nil {
		artifact.Metadata = meta.Metadata
		if artifact.ContentType == "" {
			artifact.ContentType = meta.ContentType
		}
		if artifact.CreatedTime.IsZero() {
			artifact.CreatedTime = meta.CreatedTime
		}
	}
	return artifact, nil
}

func (f *FilesystemBackend) readMeta(key string) (*metadataFile, error) {
	raw, err := os.ReadFile(f.location(key) + metaSuffix)
	if err != nil {
		return nil, err
	}
	var meta metadataFile
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Delete removes the artifact and its sidecar. Missing files are not an error.
func (f *FilesystemBackend) Delete(ctx context.Context, ref *Reference) error {
	key, err := cleanKey(ref.Key)
	if err != nil {
		return err
	}
	filePath := f.location(key)
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(filePath + metaSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != filepath.Clean(f.basePath) {
		// only succeeds when the directory is now empty
		os.Remove(dir)
	}
	return nil
}

// Exists checks if the artifact is on disk
func (f *FilesystemBackend) Exists(ctx context.Context, ref *Reference) (bool, error) {
	key, err := cleanKey(ref.Key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(f.location(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List walks the root and returns artifacts whose key starts with prefix,
// sorted by key
func (f *FilesystemBackend) List(ctx context.Context, prefix string) ([]*Reference, error) {
	prefix = strings.TrimPrefix(strings.ReplaceAll(prefix, "\\", "/"), "/")
	refs := make([]*Reference, 0)

	err := filepath.WalkDir(f.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(f.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		ref := &Reference{
			Key:         key,
			Backend:     "FS",
			Location:    p,
			Size:        info.Size(),
			CreatedTime: info.ModTime(),
		}
		if meta, err := f.readMeta(key); err == nil {
			ref.ContentType = meta.ContentType
			ref.Checksum = meta.Checksum
			ref.CreatedTime = meta.CreatedTime
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

// GetInfo returns backend information
func (f *FilesystemBackend) GetInfo() *BackendInfo {
	stats := &BackendStats{}
	filepath.WalkDir(f.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		if info, err := d.Info(); err == nil {
			stats.TotalFiles++
			stats.TotalSize += info.Size()
		}
		return nil
	})

	return &BackendInfo{
		Name: "FilesystemBackend",
		Type: "FS",
		Capabilities: []string{
			"store",
			"retrieve",
			"delete",
			"list",
		},
		Status:     "active",
		Statistics: stats,
	}
}

// HealthCheck verifies the root is writable
func (f *FilesystemBackend) HealthCheck(ctx context.Context) error {
	testFile := filepath.Join(f.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("filesystem not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return fmt.Errorf("filesystem cleanup failed: %w", err)
	}
	return nil
}
