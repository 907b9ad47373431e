// Package resetall реализует HTTP-обработчик полного сброса прогресса
// по подкатегориям — второй, независимый путь суточного сброса.
package resetall

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на полный сброс прогресса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики полного сброса.
type Service interface {
	ResetDailyProgress(ctx context.Context, owner string, force bool) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Полный сброс прогресса по подкатегориям
// @Description Удаляет все флаги завершения владельца. Защёлкивается датой последнего сброса; force в теле запроса обходит защёлку. Тело можно опустить.
// @Tags Progress
// @Accept  json
// @Produce  json
// @Param request body models.DummyResetAll false "Параметры сброса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /progress/reset-all [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.resetall"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyResetAll
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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

	swept, err := h.service.ResetDailyProgress(r.Context(), owner, req.Force)
	if err != nil {
		log.Error("failed to reset progress", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reset progress"))
		return
	}

	log.Info("bulk reset checked", slog.Bool("swept", swept))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"swept": swept,
	}))
}
