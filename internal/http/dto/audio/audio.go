// Package audio contiene los DTOs de /audio.
package audio

// UploadResponse POST /audio/upload/.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}
