package lyrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteSeparateFiles_WritesTxtAndLrc tests that both files are written
// with the expected naming pattern.
func TestWriteSeparateFiles_WritesTxtAndLrc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result := &Result{Plain: "la la la", Synced: "[00:01.00]la la la"}

	require.NoError(t, WriteSeparateFiles(t.Context(), dir, 3, "Artist", "Song", result, true, true))

	txt, err := os.ReadFile(filepath.Join(dir, "03 - Artist - Song.txt")) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "la la la", string(txt))

	lrc, err := os.ReadFile(filepath.Join(dir, "03 - Artist - Song.lrc")) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]la la la", string(lrc))
}

// TestWriteSeparateFiles_BacksUpExistingFile tests that an existing same-named
// file is preserved under a timestamped backup name instead of being overwritten silently.
func TestWriteSeparateFiles_BacksUpExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existingPath := filepath.Join(dir, "01 - Artist - Song.txt")
	require.NoError(t, os.WriteFile(existingPath, []byte("old lyrics"), 0o600))

	result := &Result{Plain: "new lyrics"}
	require.NoError(t, WriteSeparateFiles(t.Context(), dir, 1, "Artist", "Song", result, true, false))

	updated, err := os.ReadFile(existingPath) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "new lyrics", string(updated))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // the new file plus the timestamped backup.
}
