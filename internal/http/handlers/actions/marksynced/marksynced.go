// Package marksynced реализует HTTP-обработчик пометки записи реакции
// как синхронизированной с бэкендом.
package marksynced

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на пометку синхронизации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики пометки синхронизации.
type Service interface {
	MarkSynced(ctx context.Context, owner string, ref models.CardRef) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Пометить запись реакции синхронизированной
// @Description Выставляет признак синхронизации у развёрнутой записи. Если записи нет, возвращает marked=false без ошибки.
// @Tags Actions
// @Accept  json
// @Produce  json
// @Param request body models.DummyCardRef true "Карточка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /actions/sync [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.actions.marksynced"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCardRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	ref := models.CardRef{
		Category:  req.Category,
		Title:     req.Title,
		CardIndex: *req.CardIndex,
	}
	marked, err := h.service.MarkSynced(r.Context(), owner, ref)
	if err != nil {
		log.Error("failed to mark action synced", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark action synced"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"marked": marked,
	}))
}
