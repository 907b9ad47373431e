// Package storecategories реализует HTTP-обработчик сохранения списка
// категорий для типа контента.
package storecategories

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на сохранение категорий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики индекса категорий.
type Service interface {
	StoreCategories(ctx context.Context, owner, contentType string, categories []string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сохранить категории типа контента
// @Description Сохраняет список категорий, доступных для типа контента. Пустой список индекс не трогает.
// @Tags Categories
// @Accept  json
// @Produce  json
// @Param contentType path string true "Тип контента"
// @Param request body models.DummyCategories true "Список категорий"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /categories/{contentType} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.categories.storecategories"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	contentType := chi.URLParam(r, "contentType")

	var req models.DummyCategories
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.StoreCategories(r.Context(), owner, contentType, req.Categories); err != nil {
		log.Error("failed to store categories", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store categories"))
		return
	}

	log.Info("categories stored",
		slog.String("content_type", contentType),
		slog.Int("count", len(req.Categories)))
	render.JSON(w, r, response.OK())
}
