// Package audio contiene el upload y la baja de archivos de audio.
package audio

import (
	"context"
	"fmt"
	"io"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/metrics"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/storage/audiofs"
)

// Files es el almacenamiento en disco (implementado por *audiofs.Store).
type Files interface {
	PathFor(yandexID, name, ext string) (string, error)
	Save(path string, r io.Reader) (int64, error)
	Remove(path string) error
}

// UploadInput datos de un upload.
type UploadInput struct {
	OwnerYandexID    string
	CustomName       string
	OriginalFilename string
	Body             io.Reader
}

// Service define las operaciones sobre audio.
type Service interface {
	Upload(ctx context.Context, in UploadInput) (*repository.AudioFile, error)
	Delete(ctx context.Context, subjectID, audioID string) error
}

// Deps dependencias del service.
type Deps struct {
	Audio repository.AudioRepository
	Files Files
	Guard *authz.Guard
}

type service struct {
	audio repository.AudioRepository
	files Files
	guard *authz.Guard
}

func NewService(d Deps) Service {
	return &service{audio: d.Audio, files: d.Files, guard: d.Guard}
}

// Upload valida nombre y extensión, reserva el path en el store y recién
// después escribe el archivo. Si la escritura falla se borra el registro.
func (s *service) Upload(ctx context.Context, in UploadInput) (*repository.AudioFile, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("Audio.Upload"),
		logger.YandexID(in.OwnerYandexID),
	)

	if err := audiofs.ValidateName(in.CustomName); err != nil {
		metrics.RecordUpload("invalid", 0)
		return nil, err
	}
	ext, err := audiofs.ValidateExtension(in.OriginalFilename)
	if err != nil {
		metrics.RecordUpload("invalid", 0)
		return nil, err
	}
	path, err := s.files.PathFor(in.OwnerYandexID, in.CustomName, ext)
	if err != nil {
		return nil, err
	}

	rec, err := s.audio.Create(ctx, repository.CreateAudioInput{
		OwnerYandexID: in.OwnerYandexID,
		Filename:      in.CustomName,
		FilePath:      path,
	})
	if err != nil {
		if repository.IsConflict(err) {
			metrics.RecordUpload("conflict", 0)
		}
		return nil, err
	}

	n, err := s.files.Save(path, in.Body)
	if err != nil {
		if derr := s.audio.Delete(ctx, rec.ID); derr != nil {
			log.Error("rollback audio record failed", logger.AudioID(rec.ID), logger.Err(derr))
		}
		metrics.RecordUpload("failed", 0)
		return nil, fmt.Errorf("save audio: %w", err)
	}

	metrics.RecordUpload("stored", n)
	log.Info("audio stored", logger.AudioID(rec.ID), logger.FilePath(path), logger.Int("bytes", int(n)))
	return rec, nil
}

// Delete borra un audio; lo puede hacer el dueño o un superusuario.
func (s *service) Delete(ctx context.Context, subjectID, audioID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("Audio.Delete"),
		logger.YandexID(subjectID),
		logger.AudioID(audioID),
	)

	rec, err := s.audio.GetByID(ctx, audioID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireOwnerOrSuperuser(ctx, subjectID, rec.OwnerYandexID); err != nil {
		return err
	}
	if err := s.audio.Delete(ctx, rec.ID); err != nil {
		return err
	}
	if err := s.files.Remove(rec.FilePath); err != nil {
		log.Error("remove audio file failed", logger.FilePath(rec.FilePath), logger.Err(err))
	}
	log.Info("audio deleted")
	return nil
}
