// Package export реализует HTTP-обработчик выгрузки развёрнутых записей реакций.
package export

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на выгрузку записей реакций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выгрузки реакций.
type Service interface {
	GetAllForOwner(ctx context.Context, owner string) ([]models.ActionDetail, error)
	GetUnsynced(ctx context.Context, owner string) ([]models.ActionDetail, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выгрузить развёрнутые записи реакций
// @Description Возвращает развёрнутые записи реакций владельца, упорядоченные по убыванию таймстемпа. С параметром unsynced=true — только несинхронизированные.
// @Tags Actions
// @Produce  json
// @Param unsynced query bool false "Только несинхронизированные записи"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /actions/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.actions.export"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var (
		details []models.ActionDetail
		err     error
	)
	if r.URL.Query().Get("unsynced") == "true" {
		details, err = h.service.GetUnsynced(r.Context(), owner)
	} else {
		details, err = h.service.GetAllForOwner(r.Context(), owner)
	}
	if err != nil {
		log.Error("failed to export actions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export actions"))
		return
	}

	log.Info("actions exported", slog.Int("count", len(details)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"actions": details,
	}))
}
