// Package setflag реализует HTTP-обработчик записи служебного флага.
package setflag

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// Handler управляет HTTP-запросами на запись служебного флага.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики служебных флагов.
type Service interface {
	SetFlag(ctx context.Context, owner, name, value string) error
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
// @Summary Записать служебный флаг
// @Description Сохраняет значение флага из известного набора. Неизвестное имя отклоняется.
// @Tags Flags
// @Accept  json
// @Produce  json
// @Param name path string true "Имя флага"
// @Param request body models.DummyFlag true "Значение флага"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестное имя флага"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /flags/{name} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.flags.setflag"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")

	var req models.DummyFlag
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

	if err := h.service.SetFlag(r.Context(), owner, name, req.Value); err != nil {
		log.Error("failed to set flag", sl.Err(err), slog.String("flag", name))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown flag name"))
		return
	}

	log.Info("flag updated", slog.String("flag", name))
	render.JSON(w, r, response.OK())
}
