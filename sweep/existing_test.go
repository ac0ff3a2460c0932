package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExistingPolicy(t *testing.T) {
	for _, s := range []string{"overwrite", "skip", "clean"} {
		p, err := ParseExistingPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, ExistingPolicy(s), p)
	}

	p, err := ParseExistingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ExistingOverwrite, p)

	_, err = ParseExistingPolicy("append")
	assert.Error(t, err)
}

func TestExistingPolicy_Prepare(t *testing.T) {
	withResults := func(t *testing.T) string {
		dir := filepath.Join(t.TempDir(), "traces", "bbr-l0", "1")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "rtt.txt"), []byte("1 2\n"), 0644))
		return dir
	}

	t.Run("overwrite keeps results and runs", func(t *testing.T) {
		dir := withResults(t)
		skip, err := ExistingOverwrite.prepare(dir)
		require.NoError(t, err)
		assert.False(t, skip)
		assert.FileExists(t, filepath.Join(dir, "rtt.txt"))
	})

	t.Run("skip with results", func(t *testing.T) {
		skip, err := ExistingSkip.prepare(withResults(t))
		require.NoError(t, err)
		assert.True(t, skip)
	})

	t.Run("skip with empty dir", func(t *testing.T) {
		dir := t.TempDir()
		skip, err := ExistingSkip.prepare(dir)
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("skip with missing dir", func(t *testing.T) {
		skip, err := ExistingSkip.prepare(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("clean removes results", func(t *testing.T) {
		dir := withResults(t)
		skip, err := ExistingClean.prepare(dir)
		require.NoError(t, err)
		assert.False(t, skip)
		assert.NoDirExists(t, dir)
	})
}
