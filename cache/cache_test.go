package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStoreRoundTrip ensures tables written to one store can be read back from the same store and
// from a fresh store backed by the same directory.
func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	assert.NoError(t, err)

	table := map[string]string{
		"0xa9059cbb": "transfer(address,uint256)",
		"0x70a08231": "balanceOf(address)",
	}
	err = store.PutIdentifierTable("md5:abc123", table)
	assert.NoError(t, err)

	// Memory-cache hit on the live store.
	got, err := store.IdentifierTable("md5:abc123")
	assert.NoError(t, err)
	assert.EqualValues(t, table, got)

	err = store.Close()
	assert.NoError(t, err)

	// Database hit from a fresh store over the same directory.
	store, err = Open(dir)
	assert.NoError(t, err)
	got, err = store.IdentifierTable("md5:abc123")
	assert.NoError(t, err)
	assert.EqualValues(t, table, got)
	assert.NoError(t, store.Close())
}

// TestStoreMiss ensures unknown checksums report ErrCacheMiss.
func TestStoreMiss(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer store.Close()

	_, err = store.IdentifierTable("md5:unknown")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// TestStoreCreatesCacheDirectory ensures Open creates the cache directory under the working
// directory.
func TestStoreCreatesCacheDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	assert.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, filepath.Join(dir, cacheDirName))
}
