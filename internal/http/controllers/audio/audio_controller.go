// Package audio contiene los controllers de /audio.
package audio

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	dto "github.com/dropDatabas3/audioserver/internal/http/dto/audio"
	udto "github.com/dropDatabas3/audioserver/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/http/helpers"
	"github.com/dropDatabas3/audioserver/internal/http/middlewares"
	svc "github.com/dropDatabas3/audioserver/internal/http/services/audio"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/storage/audiofs"
)

// multipartMemory parte del form que se mantiene en memoria; el resto va a
// archivos temporales.
const multipartMemory = 8 << 20

// AudioController upload y borrado de audios.
type AudioController struct {
	service  svc.Service
	maxBytes int64
}

// NewAudioController crea el controller. maxBytes <= 0 deshabilita el límite.
func NewAudioController(service svc.Service, maxBytes int64) *AudioController {
	return &AudioController{service: service, maxBytes: maxBytes}
}

// Upload maneja POST /audio/upload/ (multipart: file + custom_name).
func (c *AudioController) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AudioController.Upload"))

	if c.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return
		}
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("multipart form expected").WithCause(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("file"))
		return
	}
	defer file.Close()

	rec, err := c.service.Upload(ctx, svc.UploadInput{
		OwnerYandexID:    middlewares.GetYandexID(ctx),
		CustomName:       r.FormValue("custom_name"),
		OriginalFilename: header.Filename,
		Body:             file,
	})
	if err != nil {
		var ve *audiofs.ValidationError
		switch {
		case errors.As(err, &ve):
			httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(ve.Reason))
		case repository.IsConflict(err):
			httperrors.WriteError(w, httperrors.ErrAlreadyExists)
		case repository.IsNotFound(err):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		default:
			log.Error("upload failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.UploadResponse{ID: rec.ID, Filename: rec.Filename, Path: rec.FilePath})
}

// Delete maneja DELETE /audio/{audio_id}.
func (c *AudioController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	audioID := chi.URLParam(r, "audio_id")

	err := c.service.Delete(ctx, middlewares.GetYandexID(ctx), audioID)
	switch {
	case err == nil:
		helpers.WriteJSON(w, http.StatusOK, udto.MessageResponse{Message: "Audio file deleted successfully"})
	case repository.IsNotFound(err):
		httperrors.WriteError(w, httperrors.ErrAudioNotFound)
	case errors.Is(err, authz.ErrForbidden):
		httperrors.WriteError(w, httperrors.ErrForbidden)
	default:
		logger.From(ctx).Error("delete audio failed",
			logger.Layer("controller"), logger.Op("AudioController.Delete"),
			logger.AudioID(audioID), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
