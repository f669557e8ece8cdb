// Package storage is the artifact store for generated QR codes and invoices.
// Paths are derived from registration references, so a retried pipeline run
// overwrites its previous output instead of duplicating it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes artifacts addressed by relative path and resolves their public
// URLs. Put must overwrite an existing artifact at the same path.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	URL(path string) string
}

// DiskStore persists artifacts under a local root directory, the way a
// framework "public disk" would.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *DiskStore) Put(_ context.Context, path string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func (s *DiskStore) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
