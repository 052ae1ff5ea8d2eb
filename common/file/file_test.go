package file

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, Write("", []byte("barsim")), errNoPath)

	path := filepath.Join(t.TempDir(), "deep", "nested", "out.txt")
	require.NoError(t, Write(path, []byte("barsim")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "barsim", string(b))

	require.NoError(t, Write(path, []byte("bar")), "existing files are truncated")
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar", string(b))
}

func TestExists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	assert.False(t, Exists(filepath.Join(dir, "nope")))
	path := filepath.Join(dir, "yes")
	require.NoError(t, Write(path, nil))
	assert.True(t, Exists(path))
}

func TestWriteAsCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.csv")
	assert.ErrorIs(t, WriteAsCSV(path, nil), errNoData)
	assert.Error(t, WriteAsCSV(path, [][]string{{"date", "value"}, {"2021-01-01"}}))
	assert.ErrorIs(t, WriteAsCSV("", [][]string{{"a"}}), errNoPath)

	require.NoError(t, WriteAsCSV(path, [][]string{
		{"date", "value"},
		{"2021-01-01", "100"},
	}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2021-01-01,100\n", string(b))
}

func TestWriterNoPermissionFails(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions not enforced")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	_, err := Writer(filepath.Join(dir, "path", "to", "file"))
	assert.Error(t, err)
}
