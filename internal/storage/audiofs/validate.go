package audiofs

import (
	"path/filepath"
	"regexp"
	"strings"
)

// MaxNameLength largo máximo de custom_name.
const MaxNameLength = 255

const (
	ReasonInvalidName = "Invalid file name. Only letters, numbers, underscores, dashes, and dots are allowed."
	ReasonNameTooLong = "File name is too long. Maximum length is 255 characters."
	ReasonInvalidType = "Invalid file type. Only audio files are allowed."
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// AllowedExtensions extensiones aceptadas (sin punto, minúsculas).
var AllowedExtensions = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"ogg":  {},
	"flac": {},
	"aac":  {},
}

// ValidationError rechazo de un nombre o tipo de archivo. Reason es un texto
// fijo apto para devolver al cliente.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ValidateName valida el nombre elegido por el usuario.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return &ValidationError{Reason: ReasonInvalidName}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Reason: ReasonNameTooLong}
	}
	// "." y ".." pasan el regex pero no son nombres de archivo
	if strings.Trim(name, ".") == "" {
		return &ValidationError{Reason: ReasonInvalidName}
	}
	return nil
}

// ValidateExtension extrae y valida la extensión del nombre original del
// archivo subido. Retorna la extensión normalizada.
func ValidateExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := AllowedExtensions[ext]; !ok {
		return "", &ValidationError{Reason: ReasonInvalidType}
	}
	return ext, nil
}
