// Package atomicwrite escribe archivos de forma atómica: nunca queda un
// archivo a medio escribir en el path final.
package atomicwrite

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFrom copia r a path de forma atómica y retorna los bytes escritos.
// Pasos: tmp en el mismo dir → copy → Sync → Close → Chmod → Rename.
//
// Si rename falla (Windows con destino bloqueado) intenta remove+rename.
func WriteFrom(path string, r io.Reader, perm fs.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	// no-op si el rename ya ocurrió
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp: %w", err)
	}

	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return n, fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return n, nil
}

// AtomicWriteFile escribe data a path de forma atómica.
func AtomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	_, err := WriteFrom(path, bytes.NewReader(data), perm)
	return err
}
