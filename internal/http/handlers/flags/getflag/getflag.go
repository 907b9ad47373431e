// Package getflag реализует HTTP-обработчик чтения служебного флага.
package getflag

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
)

// Handler управляет HTTP-запросами на чтение служебного флага.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики служебных флагов.
type Service interface {
	GetFlag(ctx context.Context, owner, name string) (string, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать служебный флаг
// @Description Возвращает сырое значение флага либо null, если флаг не записан. Имя флага должно быть из известного набора.
// @Tags Flags
// @Produce  json
// @Param name path string true "Имя флага"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неизвестное имя флага"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /flags/{name} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.flags.getflag"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")

	owner, ok := middlewarectx.OwnerFromContext(r.Context())
	if !ok {
		log.Error("owner not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	val, found, err := h.service.GetFlag(r.Context(), owner, name)
	if err != nil {
		log.Error("failed to read flag", sl.Err(err), slog.String("flag", name))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown flag name"))
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
