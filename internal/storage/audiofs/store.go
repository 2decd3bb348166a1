// Package audiofs guarda los archivos de audio en disco bajo
// <root>/<yandex_id>/<nombre>.<ext>.
package audiofs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dropDatabas3/audioserver/internal/util/atomicwrite"
)

// Store es el almacenamiento de archivos en disco.
type Store struct {
	root string
}

// New crea el store; el directorio raíz se crea si no existe.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("audiofs: empty root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("audiofs: %w", err)
	}
	return &Store{root: root}, nil
}

// Root directorio raíz.
func (s *Store) Root() string { return s.root }

// PathFor arma el path destino. name y ext deben venir validados.
func (s *Store) PathFor(yandexID, name, ext string) (string, error) {
	if err := checkSegment(yandexID); err != nil {
		return "", err
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.ownerDir(yandexID), name+"."+ext), nil
}

// Save escribe r en path de forma atómica.
func (s *Store) Save(path string, r io.Reader) (int64, error) {
	if !s.contains(path) {
		return 0, fmt.Errorf("audiofs: path outside root: %s", path)
	}
	return atomicwrite.WriteFrom(path, r, 0o644)
}

// Remove borra un archivo. No falla si ya no existe.
func (s *Store) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("audiofs: path outside root: %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveOwner borra el directorio completo de un usuario.
func (s *Store) RemoveOwner(yandexID string) error {
	if err := checkSegment(yandexID); err != nil {
		return err
	}
	return os.RemoveAll(s.ownerDir(yandexID))
}

func (s *Store) ownerDir(yandexID string) string {
	return filepath.Join(s.root, yandexID)
}

func (s *Store) contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

// checkSegment evita que un yandex_id se use como path traversal.
func checkSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
		return fmt.Errorf("audiofs: invalid owner segment %q", seg)
	}
	return nil
}
