package imageio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "readme.txt"))
	touch(t, filepath.Join(dir, "nested", "c.pdf"))
	single := filepath.Join(dir, "explicit.txt")
	touch(t, single)
	missing := filepath.Join(dir, "nope.png")

	t.Run("flat", func(t *testing.T) {
		in, err := Expand([]string{single, dir, missing}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			single,
			filepath.Join(dir, "a.jpg"),
			filepath.Join(dir, "b.png"),
		}, in.Files)
		assert.Equal(t, []string{missing}, in.Missing)
	})

	t.Run("recursive", func(t *testing.T) {
		in, err := Expand([]string{dir}, true)
		require.NoError(t, err)
		assert.Contains(t, in.Files, filepath.Join(dir, "nested", "c.pdf"))
		assert.NotContains(t, in.Files, filepath.Join(dir, "readme.txt"))
		assert.Empty(t, in.Missing)
	})
}

func TestExpandStatFailuresAreMissing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	touch(t, good)
	notDir := filepath.Join(good, "x")

	in, err := Expand([]string{notDir, good}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{notDir}, in.Missing)
	assert.Equal(t, []string{good}, in.Files)
}

func TestExpandEmptyDirectoryIsKept(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o750))
	onlyText := filepath.Join(dir, "text")
	touch(t, filepath.Join(onlyText, "notes.txt"))
	touch(t, filepath.Join(onlyText, "deep", "a.png"))

	in, err := Expand([]string{empty, onlyText}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{empty, onlyText}, in.Files)

	in, err = Expand([]string{onlyText}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(onlyText, "deep", "a.png")}, in.Files)
}
