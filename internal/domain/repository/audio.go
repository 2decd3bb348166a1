package repository

import (
	"context"
	"time"
)

// AudioFile metadata de un archivo subido.
type AudioFile struct {
	ID            string
	OwnerID       string // User.ID
	OwnerYandexID string
	Filename      string
	FilePath      string // único
	CreatedAt     time.Time
}

// CreateAudioInput datos para registrar un archivo.
type CreateAudioInput struct {
	OwnerYandexID string
	Filename      string
	FilePath      string
}

// AudioRepository define operaciones sobre la metadata de audio.
type AudioRepository interface {
	// Create registra el archivo. ErrNotFound si el owner no existe,
	// ErrConflict si FilePath ya está registrado.
	Create(ctx context.Context, in CreateAudioInput) (*AudioFile, error)

	GetByID(ctx context.Context, id string) (*AudioFile, error)

	// ListByOwner retorna los audios del usuario ordenados por fecha de alta.
	ListByOwner(ctx context.Context, ownerYandexID string) ([]AudioFile, error)

	Delete(ctx context.Context, id string) error
}

// Store agrupa los repositorios de un backend.
type Store interface {
	Users() UserRepository
	Audio() AudioRepository
	Ping(ctx context.Context) error
	Close()
}
