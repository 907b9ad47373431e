// Package clear реализует HTTP-обработчик полной очистки данных владельца.
//
// Используется при выходе пользователя из аккаунта: удаляются все записи
// владельца разом, чтобы чужие данные не достались следующей сессии.
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

// Handler управляет HTTP-запросами на очистку данных владельца.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики очистки владельца.
type Service interface {
	ClearOwner(ctx context.Context, owner string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить все данные владельца
// @Description Удаляет все записи текущего владельца: прогресс, реакции, подсказки, флаги и индексы категорий. Возвращает число удалённых записей.
// @Tags Owner
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /owner [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.owner.clear"
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

	removed, err := h.service.ClearOwner(r.Context(), owner)
	if err != nil {
		log.Error("failed to clear owner data", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not clear owner data"))
		return
	}

	log.Info("owner data cleared", slog.Int("removed", removed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed": removed,
	}))
}
