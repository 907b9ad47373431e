// Package clear реализует HTTP-обработчик удаления реакций по подборке карточек.
package clear

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
)

// Handler управляет HTTP-запросами на удаление реакций подборки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления реакций.
type Service interface {
	ClearActions(ctx context.Context, owner, category, title string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить реакции по подборке карточек
// @Description Удаляет компактные и развёрнутые записи реакций для заданной категории и заголовка подборки.
// @Tags Actions
// @Produce  json
// @Param category query string true "Категория"
// @Param title query string true "Заголовок подборки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /actions [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.actions.clear"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := r.URL.Query().Get("category")
	title := r.URL.Query().Get("title")
	if category == "" || title == "" {
		log.Error("invalid query parameters")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("category and title are required"))
		return
	}

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	removed, err := h.service.ClearActions(r.Context(), owner, category, title)
	if err != nil {
		log.Error("failed to clear actions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not clear actions"))
		return
	}

	log.Info("actions cleared", slog.Int("removed", removed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed": removed,
	}))
}
