package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty paths", func(t *testing.T) {
		_, err := ValidateFilePath("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	for _, bad := range []string{"a;rm -rf", "out|tee", "$(whoami).ics", "x`y`"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ValidateFilePath(bad)
			assert.ErrorIs(t, err, ErrForbiddenChar)
		})
	}

	t.Run("makes relative paths absolute", func(t *testing.T) {
		got, err := ValidateFilePath("deadlines.ics")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "deadlines.ics", filepath.Base(got))
	})

	t.Run("cleans dot segments", func(t *testing.T) {
		dir := t.TempDir()
		got, err := ValidateFilePath(filepath.Join(dir, "a", "..", "b.json"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "b.json"), got)
	})
}

func TestSafeWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	written, err := SafeWriteFile(path, []byte(`[]`))
	require.NoError(t, err)

	data, err := SafeReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	info, err := os.Stat(written)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = SafeReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
