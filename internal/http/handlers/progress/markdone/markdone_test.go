package markdone

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
)

// MockService реализует интерфейс markdone.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SetDone(ctx context.Context, owner, category string, subCategoryIndex int) error {
	args := m.Called(ctx, owner, category, subCategoryIndex)
	return args.Error(0)
}

func TestMarkDoneHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная отметка",
			body: `{"category":"money","sub_category_index":0}`,
			setupMock: func(m *MockService) {
				m.On("SetDone", mock.Anything, "u1", "money", 0).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "битый json",
			body:           `{"category":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "нет категории",
			body:           `{"sub_category_index":3}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Category is a required field`,
		},
		{
			name:           "нет индекса",
			body:           `{"category":"money"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field SubCategoryIndex is a required field`,
		},
		{
			name: "ошибка сервиса",
			body: `{"category":"money","sub_category_index":2}`,
			setupMock: func(m *MockService) {
				m.On("SetDone", mock.Anything, "u1", "money", 2).Return(errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not mark subcategory done`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/progress/done", strings.NewReader(tt.body))
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

func TestMarkDoneHandler_NoOwner(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := New(logger, new(MockService))

	req := httptest.NewRequest(http.MethodPost, "/progress/done",
		strings.NewReader(`{"category":"money","sub_category_index":0}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
