package atomicwrite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFrom_CreatesDirsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "song.mp3")

	n, err := WriteFrom(path, strings.NewReader("ID3data"), 0o644)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ID3data", string(b))
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, AtomicWriteFile(path, []byte("one"), 0o600))
	require.NoError(t, AtomicWriteFile(path, []byte("two"), 0o600))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(b))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestWriteFrom_ReaderErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")

	_, err := WriteFrom(path, failingReader{}, 0o600)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "ni el destino ni el tmp deben quedar")
}
