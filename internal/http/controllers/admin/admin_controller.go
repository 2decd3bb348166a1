// Package admin contiene los controllers de /admin.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	dto "github.com/dropDatabas3/audioserver/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/http/helpers"
	"github.com/dropDatabas3/audioserver/internal/http/middlewares"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	svc "github.com/dropDatabas3/audioserver/internal/http/services/users"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// AdminController operaciones de superusuario.
type AdminController struct {
	service svc.Service
}

// NewAdminController crea el controller.
func NewAdminController(service svc.Service) *AdminController {
	return &AdminController{service: service}
}

// DeleteUser maneja DELETE /admin/delete_user_by_admin/?yandex_id=...
func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AdminController.DeleteUser"))

	target := strings.TrimSpace(r.URL.Query().Get("yandex_id"))
	if target == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("yandex_id"))
		return
	}

	err := c.service.DeleteByAdmin(ctx, middlewares.GetYandexID(ctx), target)
	switch {
	case err == nil:
		helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
	case errors.Is(err, authz.ErrForbidden):
		httperrors.WriteError(w, httperrors.ErrSuperuserRequired)
	case repository.IsNotFound(err):
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
	default:
		log.Error("delete user failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
