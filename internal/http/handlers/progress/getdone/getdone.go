// Package getdone реализует HTTP-обработчик чтения флага завершения подкатегории.
package getdone

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
)

// Handler управляет HTTP-запросами на чтение флага завершения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения флага завершения.
type Service interface {
	GetDone(ctx context.Context, owner, category string, subCategoryIndex int) (string, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать флаг завершения подкатегории
// @Description Возвращает сырое значение флага: "true", "false" либо null, если флаг не записан.
// @Tags Progress
// @Produce  json
// @Param category query string true "Категория"
// @Param index query int true "Индекс подкатегории"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /progress/done [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.getdone"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := r.URL.Query().Get("category")
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if category == "" || err != nil || index < 0 {
		log.Error("invalid query parameters")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("category and non-negative index are required"))
		return
	}

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	val, found, err := h.service.GetDone(r.Context(), owner, category, index)
	if err != nil {
		log.Error("failed to read done flag", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read done flag"))
		return
	}

	var value any
	if found {
		value = val
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"value": value,
	}))
}
