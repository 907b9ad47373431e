// Package list реализует HTTP-обработчик выборки реакций по подборке карточек.
package list

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

// Handler управляет HTTP-запросами на выборку реакций подборки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки реакций.
type Service interface {
	GetAllActions(ctx context.Context, owner, category, title string) (map[int]models.Action, error)
	GetAction(ctx context.Context, owner string, ref models.CardRef) (models.Action, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Реакции по подборке карточек
// @Description Возвращает отображение "индекс карточки -> реакция" для заданной категории и заголовка подборки.
// @Tags Actions
// @Produce  json
// @Param category query string true "Категория"
// @Param title query string true "Заголовок подборки"
// @Param index query int false "Индекс карточки для точечной выборки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /actions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.actions.list"
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

	if rawIndex := r.URL.Query().Get("index"); rawIndex != "" {
		index, err := strconv.Atoi(rawIndex)
		if err != nil || index < 0 {
			log.Error("invalid index parameter")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("index must be a non-negative integer"))
			return
		}
		ref := models.CardRef{Category: category, Title: title, CardIndex: index}
		action, found, err := h.service.GetAction(r.Context(), owner, ref)
		if err != nil {
			log.Error("failed to read action", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read action"))
			return
		}
		var value any
		if found {
			value = action
		}
		render.JSON(w, r, response.OKWithData(map[string]any{
			"action": value,
		}))
		return
	}

	actions, err := h.service.GetAllActions(r.Context(), owner, category, title)
	if err != nil {
		log.Error("failed to list actions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list actions"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"actions": actions,
	}))
}
