// Package view реализует HTTP-обработчик фиксации первого показа подсказки.
//
// Handler записывает таймстемп показа только при первом обращении:
// повторные показы той же карточки не двигают отметку времени,
// иначе подсказка никогда не истечёт.
package view

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

// Handler управляет HTTP-запросами на фиксацию показа подсказки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики показа подсказок.
type Service interface {
	RecordViewedIfAbsent(ctx context.Context, owner string, ref models.CardRef) (bool, error)
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
// @Summary Зафиксировать показ подсказки
// @Description Записывает таймстемп первого показа подсказки. Повторный показ той же карточки отметку не двигает; в ответе first_view=false.
// @Tags Prompts
// @Accept  json
// @Produce  json
// @Param request body models.DummyCardRef true "Карточка подсказки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/view [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.view"
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
	firstView, err := h.service.RecordViewedIfAbsent(r.Context(), owner, ref)
	if err != nil {
		log.Error("failed to record prompt view", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record prompt view"))
		return
	}

	log.Info("prompt view recorded", slog.Bool("first_view", firstView))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"first_view": firstView,
	}))
}
