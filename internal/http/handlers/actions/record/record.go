// Package record реализует HTTP-обработчик записи реакции на карточку.
//
// Handler сохраняет компактную запись действия и развёрнутую запись
// с таймстемпом и признаком синхронизации. Повторная реакция на ту же
// карточку перезаписывает предыдущую.
package record

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

// Handler управляет HTTP-запросами на запись реакции.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики записи реакций.
type Service interface {
	SetAction(ctx context.Context, owner string, ref models.CardRef, action models.Action) error
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
// @Summary Записать реакцию на карточку
// @Description Сохраняет реакцию (like/dislike/maybe) на карточку. Повторная реакция перезаписывает прежнюю и снова помечает запись несинхронизированной.
// @Tags Actions
// @Accept  json
// @Produce  json
// @Param request body models.DummyCardAction true "Карточка и реакция"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /actions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.actions.record"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCardAction
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
	if err := h.service.SetAction(r.Context(), owner, ref, models.Action(req.Action)); err != nil {
		log.Error("failed to record action", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record action"))
		return
	}

	log.Info("action recorded",
		slog.String("category", req.Category),
		slog.String("action", req.Action))
	render.JSON(w, r, response.OK())
}
