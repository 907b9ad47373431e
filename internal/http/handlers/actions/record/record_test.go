package record

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/progress-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/progress-tracker/internal/models"
)

// MockService реализует интерфейс record.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SetAction(ctx context.Context, owner string, ref models.CardRef, action models.Action) error {
	args := m.Called(ctx, owner, ref, action)
	return args.Error(0)
}

func TestRecordHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ref := models.CardRef{Category: "money", Title: "5 tips", CardIndex: 2}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная запись like",
			body: `{"category":"money","title":"5 tips","card_index":2,"action":"like"}`,
			setupMock: func(m *MockService) {
				m.On("SetAction", mock.Anything, "u1", ref, models.ActionLike).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "нулевой индекс проходит валидацию",
			body: `{"category":"money","title":"5 tips","card_index":0,"action":"maybe"}`,
			setupMock: func(m *MockService) {
				m.On("SetAction", mock.Anything, "u1",
					models.CardRef{Category: "money", Title: "5 tips", CardIndex: 0},
					models.ActionMaybe).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "недопустимое действие",
			body:           `{"category":"money","title":"5 tips","card_index":2,"action":"love"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Action must be one of the allowed values`,
		},
		{
			name:           "битый json",
			body:           `{"category"`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name: "ошибка сервиса",
			body: `{"category":"money","title":"5 tips","card_index":2,"action":"dislike"}`,
			setupMock: func(m *MockService) {
				m.On("SetAction", mock.Anything, "u1", ref, models.ActionDislike).
					Return(errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not record action`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/actions", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Owner, "u1"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
