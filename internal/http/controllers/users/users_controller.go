// Package users contiene los controllers de /users.
package users

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	dto "github.com/dropDatabas3/audioserver/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/http/helpers"
	"github.com/dropDatabas3/audioserver/internal/http/middlewares"
	svc "github.com/dropDatabas3/audioserver/internal/http/services/users"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// UsersController perfil y audios del usuario de la sesión.
type UsersController struct {
	service svc.Service
}

// NewUsersController crea el controller.
func NewUsersController(service svc.Service) *UsersController {
	return &UsersController{service: service}
}

// Me maneja GET /users/get_user_info/ (y el alias /users/get_user_yaid/).
func (c *UsersController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := c.service.Get(ctx, middlewares.GetYandexID(ctx))
	if err != nil {
		writeUserError(w, r, "UsersController.Me", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// Update maneja PATCH /users/change_user/.
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.UpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Username == nil && req.Email == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("username or email"))
		return
	}

	_, err := c.service.Update(ctx, middlewares.GetYandexID(ctx), svc.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeUserError(w, r, "UsersController.Update", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "User updated successfully"})
}

// ListAudio maneja GET /users/get_audios_list/.
func (c *UsersController) ListAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	files, err := c.service.ListAudio(ctx, middlewares.GetYandexID(ctx))
	if err != nil {
		writeUserError(w, r, "UsersController.ListAudio", err)
		return
	}

	out := make([]dto.AudioItem, 0, len(files))
	for _, f := range files {
		out = append(out, dto.AudioItem{
			ID:        f.ID,
			Filename:  f.Filename,
			FilePath:  f.FilePath,
			CreatedAt: f.CreatedAt,
		})
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func toUserResponse(u *repository.User) dto.UserResponse {
	return dto.UserResponse{Username: u.Username, Email: u.Email, YandexID: u.YandexID}
}

func writeUserError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fe *svc.FieldError
	switch {
	case repository.IsNotFound(err):
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
	case errors.As(err, &fe):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(fe.Error()))
	default:
		logger.From(r.Context()).Error("users request failed",
			logger.Layer("controller"), logger.Op(op), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
