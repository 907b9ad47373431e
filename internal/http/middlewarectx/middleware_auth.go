// Package middlewarectx содержит HTTP middleware трекера прогресса.
//
// OwnerMiddleware определяет владельца записей для запроса: uid из валидного
// JWT в заголовке Authorization либо литерал "guest", когда заголовка нет.
// Запрос с заголовком, но невалидным токеном отклоняется с 401 — тихое
// падение в гостевой неймспейс смешало бы записи разных владельцев.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	jwtlib "github.com/magabrotheeeer/progress-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/progress-tracker/internal/http/response"
	"github.com/magabrotheeeer/progress-tracker/internal/keyspace"
	"github.com/magabrotheeeer/progress-tracker/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Owner — ключ для идентификатора владельца записей в контексте.
const Owner Key = "owner"

// TokenParser описывает проверку JWT токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwtlib.CustomClaims, error)
}

// OwnerMiddleware возвращает HTTP middleware, который кладёт в контекст
// идентификатор владельца записей.
func OwnerMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OwnerMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				ctx := context.WithValue(r.Context(), Owner, keyspace.GuestOwner)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), Owner, keyspace.Owner(claims.UID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext возвращает владельца записей, положенного OwnerMiddleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(Owner).(string)
	return owner, ok && owner != ""
}
