// Package reports реализует HTTP-обработчик выборки истёкших подсказок,
// об удалении которых ещё не отчитались бэкенду.
package reports

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

// Handler управляет HTTP-запросами на выборку неотчитанных удалений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отчётов об удалении.
type Service interface {
	GetPendingDeletionReports(ctx context.Context, owner string) ([]models.CardRef, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Неотчитанные удаления подсказок
// @Description Возвращает карточки истёкших подсказок, об удалении которых ещё не отчитались.
// @Tags Prompts
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/reports [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.reports"
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

	refs, err := h.service.GetPendingDeletionReports(r.Context(), owner)
	if err != nil {
		log.Error("failed to collect deletion reports", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not collect deletion reports"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"pending": refs,
	}))
}
