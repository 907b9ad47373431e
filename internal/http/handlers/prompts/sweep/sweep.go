// Package sweep реализует HTTP-обработчик принудительного прохода
// по просмотренным подсказкам с пометкой истёкших.
package sweep

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

// Handler управляет HTTP-запросами на проход по подсказкам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики прохода по подсказкам.
type Service interface {
	SweepExpirations(ctx context.Context, owner string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пометить истёкшие подсказки
// @Description Проходит по просмотренным подсказкам владельца и помечает истёкшими те, чей показ был сутки назад и раньше. Возвращает число новых пометок.
// @Tags Prompts
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/sweep [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.sweep"
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

	marked, err := h.service.SweepExpirations(r.Context(), owner)
	if err != nil {
		log.Error("failed to sweep prompts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sweep prompts"))
		return
	}

	log.Info("prompt sweep finished", slog.Int("marked", marked))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"marked": marked,
	}))
}
