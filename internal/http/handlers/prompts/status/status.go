// Package status реализует HTTP-обработчик проверки истечения подсказки.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на проверку истечения подсказки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки истечения.
type Service interface {
	IsExpired(ctx context.Context, owner string, ref models.CardRef) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить истечение подсказки
// @Description Возвращает expired=true, если с первого показа подсказки прошло не меньше суток. Непросмотренная подсказка не считается истёкшей.
// @Tags Prompts
// @Produce  json
// @Param category query string true "Категория"
// @Param title query string true "Заголовок подборки"
// @Param index query int true "Индекс карточки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := r.URL.Query().Get("category")
	title := r.URL.Query().Get("title")
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if category == "" || title == "" || err != nil || index < 0 {
		log.Error("invalid query parameters")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("category, title and non-negative index are required"))
		return
	}

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	ref := models.CardRef{Category: category, Title: title, CardIndex: index}
	expired, err := h.service.IsExpired(r.Context(), owner, ref)
	if err != nil {
		log.Error("failed to check prompt expiry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check prompt expiry"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"expired": expired,
	}))
}
