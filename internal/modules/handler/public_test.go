package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/service"
)

// MockPublicService is a mock implementation of service.PublicService
type MockPublicService struct {
	mock.Mock
}

func (m *MockPublicService) List(ctx context.Context, category, locale string) ([]service.PublicEntity, error) {
	args := m.Called(ctx, category, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.PublicEntity), args.Error(1)
}

func (m *MockPublicService) Home(ctx context.Context, locale string) (map[string][]service.PublicEntity, error) {
	args := m.Called(ctx, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]service.PublicEntity), args.Error(1)
}

func (m *MockPublicService) Gastronomy(ctx context.Context, locale string) ([]service.PublicGastronomyCategory, error) {
	args := m.Called(ctx, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.PublicGastronomyCategory), args.Error(1)
}

func (m *MockPublicService) Availability(ctx context.Context, category string, id uuid.UUID) ([]model.AvailabilitySlot, error) {
	args := m.Called(ctx, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AvailabilitySlot), args.Error(1)
}

func setupPublicRouter(h *PublicHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/public/home", h.Home)
	r.GET("/public/gastronomy", h.Gastronomy)
	r.GET("/public/:category", h.List)
	r.GET("/public/:category/:id/availability", h.Availability)
	return r
}

func TestPublicHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setup          func(*MockPublicService)
		expectedStatus int
	}{
		{
			name: "default locale is italian",
			url:  "/public/tours",
			setup: func(svc *MockPublicService) {
				svc.On("List", mock.Anything, "tours", "it").
					Return([]service.PublicEntity{{ID: uuid.New(), Title: "Tour dei borghi"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "explicit english locale",
			url:  "/public/tours?locale=en",
			setup: func(svc *MockPublicService) {
				svc.On("List", mock.Anything, "tours", "en").
					Return([]service.PublicEntity{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown locale falls back to italian",
			url:  "/public/tours?locale=fr",
			setup: func(svc *MockPublicService) {
				svc.On("List", mock.Anything, "tours", "it").
					Return([]service.PublicEntity{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown category",
			url:  "/public/boats",
			setup: func(svc *MockPublicService) {
				svc.On("List", mock.Anything, "boats", "it").
					Return(nil, service.ErrCategoryUnknown)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPublicService{}
			tt.setup(mockService)
			router := setupPublicRouter(NewPublicHandler(mockService))

			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPublicHandler_Home(t *testing.T) {
	mockService := &MockPublicService{}
	mockService.On("Home", mock.Anything, "en").Return(map[string][]service.PublicEntity{
		"tours":  {{ID: uuid.New(), Title: "Village tour"}},
		"events": {},
	}, nil)
	router := setupPublicRouter(NewPublicHandler(mockService))

	req := httptest.NewRequest("GET", "/public/home?locale=en", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestPublicHandler_Gastronomy(t *testing.T) {
	mockService := &MockPublicService{}
	mockService.On("Gastronomy", mock.Anything, "en").Return([]service.PublicGastronomyCategory{
		{ID: uuid.New(), Title: "First courses", Dishes: []service.PublicDish{{ID: uuid.New(), Name: "Fileja pasta"}}},
	}, nil)
	router := setupPublicRouter(NewPublicHandler(mockService))

	req := httptest.NewRequest("GET", "/public/gastronomy?locale=en", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fileja pasta")
	mockService.AssertExpectations(t)
}

func TestPublicHandler_Availability(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		idParam        string
		setup          func(*MockPublicService)
		expectedStatus int
	}{
		{
			name:    "slots returned",
			idParam: id.String(),
			setup: func(svc *MockPublicService) {
				svc.On("Availability", mock.Anything, "tours", id).
					Return([]model.AvailabilitySlot{{Date: "2026-09-12", StartTime: "09:30"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "entity not found",
			idParam: id.String(),
			setup: func(svc *MockPublicService) {
				svc.On("Availability", mock.Anything, "tours", id).
					Return(nil, service.ErrEntityNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid entity ID",
			idParam:        "invalid-uuid",
			setup:          func(svc *MockPublicService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPublicService{}
			tt.setup(mockService)
			router := setupPublicRouter(NewPublicHandler(mockService))

			req := httptest.NewRequest("GET", "/public/tours/"+tt.idParam+"/availability", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
