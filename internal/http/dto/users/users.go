// Package users contiene los DTOs de /users y /admin.
package users

import "time"

// UserResponse perfil del usuario actual.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	YandexID string `json:"yandex_id"`
}

// UpdateRequest PATCH /users/change_user/. Campos ausentes no se tocan.
type UpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// MessageResponse respuesta genérica.
type MessageResponse struct {
	Message string `json:"message"`
}

// AudioItem elemento de GET /users/get_audios_list/.
type AudioItem struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}
