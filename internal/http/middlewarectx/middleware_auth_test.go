package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtlib "github.com/magabrotheeeer/progress-tracker/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func ownerEcho(t *testing.T, gotOwner *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := OwnerFromContext(r.Context())
		require.True(t, ok)
		*gotOwner = owner
		w.WriteHeader(http.StatusOK)
	})
}

func TestOwnerMiddleware_NoHeaderMeansGuest(t *testing.T) {
	maker := jwtlib.NewMaker("secret", time.Hour)

	var owner string
	h := OwnerMiddleware(maker, newNoopLogger())(ownerEcho(t, &owner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest", owner)
}

func TestOwnerMiddleware_ValidToken(t *testing.T) {
	maker := jwtlib.NewMaker("secret", time.Hour)
	token, err := maker.GenerateToken("u1")
	require.NoError(t, err)

	var owner string
	h := OwnerMiddleware(maker, newNoopLogger())(ownerEcho(t, &owner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", owner)
}

func TestOwnerMiddleware_InvalidToken(t *testing.T) {
	maker := jwtlib.NewMaker("secret", time.Hour)

	h := OwnerMiddleware(maker, newNoopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerMiddleware_MalformedHeader(t *testing.T) {
	maker := jwtlib.NewMaker("secret", time.Hour)

	h := OwnerMiddleware(maker, newNoopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
