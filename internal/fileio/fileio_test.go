package fileio

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStripsUTF8BOM(t *testing.T) {
	p := filepath.Join(t.TempDir(), "engine.js")
	require.NoError(t, os.WriteFile(p, []byte("\xef\xbb\xbfconst a = 1;\n"), 0o644))

	got, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", got)
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	// "hi\n" as UTF-16LE with BOM.
	got, err := Decode([]byte{0xff, 0xfe, 'h', 0, 'i', 0, '\n', 0})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", got)
}

func TestDecodePlainAndInvalid(t *testing.T) {
	got, err := Decode([]byte("plain\r\nтекст\n"))
	require.NoError(t, err)
	assert.Equal(t, "plain\r\nтекст\n", got)

	_, err = Decode([]byte{'a', 0xff, 'b'})
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.js"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteAtomicReplacesWithoutBOMAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "engine.js")
	require.NoError(t, os.WriteFile(p, []byte("\xef\xbb\xbfold\n"), 0o600))

	require.NoError(t, WriteAtomic(p, "new\n"))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteAtomicCreatesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "fresh.txt")
	require.NoError(t, WriteAtomic(p, "x"))
	got, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
