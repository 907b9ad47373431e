package progresstracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	actionsclear "github.com/magabrotheeeer/progress-tracker/internal/http/handlers/actions/clear"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/actions/export"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/actions/list"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/actions/marksynced"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/actions/record"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/categories/listcategories"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/categories/storecategories"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/flags/getflag"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/flags/setflag"
	ownerclear "github.com/magabrotheeeer/progress-tracker/internal/http/handlers/owner/clear"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/progress/getdone"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/progress/markdone"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/progress/resetall"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/progress/resetdaily"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/prompts/reportdone"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/prompts/reports"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/prompts/status"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/prompts/sweep"
	"github.com/magabrotheeeer/progress-tracker/internal/http/handlers/prompts/view"
	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	actionsservice "github.com/magabrotheeeer/progress-tracker/internal/services/actions"
	completionservice "github.com/magabrotheeeer/progress-tracker/internal/services/completion"
	flagsservice "github.com/magabrotheeeer/progress-tracker/internal/services/flags"
	promptsservice "github.com/magabrotheeeer/progress-tracker/internal/services/prompts"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, tokenParser middlewarectx.TokenParser,
	completionService *completionservice.CompletionService,
	actionsService *actionsservice.ActionsService,
	promptsService *promptsservice.PromptsService,
	flagsService *flagsservice.FlagsService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Вся группа работает и с токеном, и в гостевом режиме
		r.Use(middlewarectx.OwnerMiddleware(tokenParser, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))

		r.Post("/progress/done", markdone.New(logger, completionService).ServeHTTP)
		r.Get("/progress/done", getdone.New(logger, completionService).ServeHTTP)
		r.Post("/progress/reset-daily", resetdaily.New(logger, completionService).ServeHTTP)
		r.Post("/progress/reset-all", resetall.New(logger, completionService).ServeHTTP)

		r.Post("/actions", record.New(logger, actionsService).ServeHTTP)
		r.Get("/actions", list.New(logger, actionsService).ServeHTTP)
		r.Delete("/actions", actionsclear.New(logger, actionsService).ServeHTTP)
		r.Get("/actions/export", export.New(logger, actionsService).ServeHTTP)
		r.Post("/actions/sync", marksynced.New(logger, actionsService).ServeHTTP)

		r.Post("/prompts/view", view.New(logger, promptsService).ServeHTTP)
		r.Get("/prompts/status", status.New(logger, promptsService).ServeHTTP)
		r.Post("/prompts/sweep", sweep.New(logger, promptsService).ServeHTTP)
		r.Get("/prompts/reports", reports.New(logger, promptsService).ServeHTTP)
		r.Post("/prompts/reports", reportdone.New(logger, promptsService).ServeHTTP)

		r.Get("/flags/{name}", getflag.New(logger, flagsService).ServeHTTP)
		r.Put("/flags/{name}", setflag.New(logger, flagsService).ServeHTTP)

		r.Put("/categories/{contentType}", storecategories.New(logger, flagsService).ServeHTTP)
		r.Get("/categories/{contentType}", listcategories.New(logger, flagsService).ServeHTTP)

		r.Delete("/owner", ownerclear.New(logger, flagsService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
