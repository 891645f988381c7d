package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLocate_Priority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.example"), "A=1")
	writeFile(t, filepath.Join(dir, ".env.local"), "A=2")

	f, ok := Locate(dir)
	require.True(t, ok)
	assert.Equal(t, ".env.local", f.Name)

	writeFile(t, filepath.Join(dir, ".env"), "A=3")
	f, ok = Locate(dir)
	require.True(t, ok)
	assert.Equal(t, ".env", f.Name)
	assert.Equal(t, filepath.Join(dir, ".env"), f.Path)
}

func TestLocate_None(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0755))

	_, ok := Locate(dir)
	assert.False(t, ok, "a directory named .env is not an env file")
}

func TestLocateFor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "ROOT=1")
	writeFile(t, filepath.Join(root, "apps/web/.env.local"), "WEB=1")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "apps/api"), 0755))

	f, shared, ok := LocateFor(root, "apps/web")
	require.True(t, ok)
	assert.False(t, shared)
	assert.Equal(t, ".env.local", f.Name)

	f, shared, ok = LocateFor(root, "apps/api")
	require.True(t, ok)
	assert.True(t, shared)
	assert.Equal(t, filepath.Join(root, ".env"), f.Path)

	f, shared, ok = LocateFor(root, ".")
	require.True(t, ok)
	assert.False(t, shared)
	assert.Equal(t, ".env", f.Name)
}

func TestLocateFor_NoFiles(t *testing.T) {
	root := t.TempDir()
	_, _, ok := LocateFor(root, "apps/api")
	assert.False(t, ok)
	_, _, ok = LocateFor(root, ".")
	assert.False(t, ok)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nA=1\nB=\"two words\"\n"
	writeFile(t, path, content)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, content, got, "contents are returned verbatim")

	_, err = Read(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCountVars(t *testing.T) {
	assert.Equal(t, 0, CountVars(""))
	assert.Equal(t, 2, CountVars("# comment\nA=1\n\nexport B=two\n"))
	assert.Equal(t, 3, CountVars("A=1\nB=2\nC='three'"))
}
