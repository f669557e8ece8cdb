package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorePutAndOverwrite(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "http://localhost:8080/storage")
	ctx := context.Background()

	err := store.Put(ctx, "qrcodes/AB12CD34EF.png", []byte("first"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "qrcodes", "AB12CD34EF.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Same path overwrites, it must not create a second file.
	err = store.Put(ctx, "qrcodes/AB12CD34EF.png", []byte("second"))
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(root, "qrcodes", "AB12CD34EF.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "qrcodes"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiskStoreURL(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "http://localhost:8080/storage/")
	assert.Equal(t, "http://localhost:8080/storage/invoices/X.pdf", store.URL("invoices/X.pdf"))
	assert.Equal(t, "http://localhost:8080/storage/invoices/X.pdf", store.URL("/invoices/X.pdf"))
}
