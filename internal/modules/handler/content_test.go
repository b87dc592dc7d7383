package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/modules/service"
)

// MockContentService is a mock implementation of service.ContentService
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Categories() []model.CategoryConfig {
	args := m.Called()
	return args.Get(0).([]model.CategoryConfig)
}

func (m *MockContentService) Config(category string) (model.CategoryConfig, error) {
	args := m.Called(category)
	return args.Get(0).(model.CategoryConfig), args.Error(1)
}

func (m *MockContentService) LoadAll(ctx context.Context, category string) ([]model.Entity, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Entity), args.Error(1)
}

func (m *MockContentService) Get(ctx context.Context, category string, id uuid.UUID) (*model.Entity, error) {
	args := m.Called(ctx, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockContentService) NewTemplate(ctx context.Context, category string, subcategory string) (*model.Entity, error) {
	args := m.Called(ctx, category, subcategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockContentService) Save(ctx context.Context, category string, e *model.Entity) (*model.Entity, error) {
	args := m.Called(ctx, category, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, category string, id uuid.UUID) error {
	args := m.Called(ctx, category, id)
	return args.Error(0)
}

func (m *MockContentService) Reorder(ctx context.Context, category string, id uuid.UUID, direction string) error {
	args := m.Called(ctx, category, id, direction)
	return args.Error(0)
}

func (m *MockContentService) AddSlot(e *model.Entity, slot model.AvailabilitySlot) error {
	args := m.Called(e, slot)
	return args.Error(0)
}

func (m *MockContentService) RemoveSlot(e *model.Entity, date string) error {
	args := m.Called(e, date)
	return args.Error(0)
}

func setupContentRouter(h *ContentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/content/:category", h.ListEntities)
	r.POST("/content/:category", h.SaveEntity)
	r.DELETE("/content/:category/:id", h.DeleteEntity)
	r.POST("/content/:category/:id/reorder", h.Reorder)
	r.POST("/content/:category/:id/slots", h.AddSlot)
	return r
}

func TestContentHandler_ListEntities(t *testing.T) {
	tests := []struct {
		name           string
		category       string
		setup          func(*MockContentService)
		expectedStatus int
	}{
		{
			name:     "successful listing",
			category: "tours",
			setup: func(svc *MockContentService) {
				svc.On("LoadAll", mock.Anything, "tours").Return([]model.Entity{
					{ID: uuid.New(), Title: "Tour dei borghi"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "unknown category",
			category: "boats",
			setup: func(svc *MockContentService) {
				svc.On("LoadAll", mock.Anything, "boats").Return(nil, service.ErrCategoryUnknown)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:     "service layer error",
			category: "tours",
			setup: func(svc *MockContentService) {
				svc.On("LoadAll", mock.Anything, "tours").Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockContentService{}
			tt.setup(mockService)
			router := setupContentRouter(NewContentHandler(mockService))

			req := httptest.NewRequest("GET", "/content/"+tt.category, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestContentHandler_SaveEntity(t *testing.T) {
	entity := model.Entity{
		Translations: datatypes.NewJSONType(model.Translations{
			model.LocaleIT: {Title: "Tour dei borghi"},
			model.LocaleEN: {Title: "Village tour"},
		}),
	}

	tests := []struct {
		name           string
		body           []byte
		setup          func(*MockContentService)
		expectedStatus int
	}{
		{
			name: "successful save",
			body: mustMarshal(t, entity),
			setup: func(svc *MockContentService) {
				saved := entity
				saved.ID = uuid.New()
				svc.On("Save", mock.Anything, "tours", mock.Anything).Return(&saved, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "validation failure returns the failing fields",
			body: mustMarshal(t, entity),
			setup: func(svc *MockContentService) {
				svc.On("Save", mock.Anything, "tours", mock.Anything).Return(nil, &service.ValidationError{
					Fields: map[string]string{"translations.en.title": "title is required"},
				})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "malformed body",
			body:           []byte("{not json"),
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockContentService{}
			tt.setup(mockService)
			router := setupContentRouter(NewContentHandler(mockService))

			req := httptest.NewRequest("POST", "/content/tours", bytes.NewBuffer(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)

			if tt.expectedStatus == http.StatusUnprocessableEntity {
				var resp serializer.Response
				assert.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "title is required", resp.Fields["translations.en.title"])
			}
		})
	}
}

func TestContentHandler_Reorder(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		idParam        string
		body           ReorderReq
		setup          func(*MockContentService)
		expectedStatus int
	}{
		{
			name:    "successful move",
			idParam: id.String(),
			body:    ReorderReq{Direction: "up"},
			setup: func(svc *MockContentService) {
				svc.On("Reorder", mock.Anything, "tours", id, "up").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "no neighbor to swap with",
			idParam: id.String(),
			body:    ReorderReq{Direction: "down"},
			setup: func(svc *MockContentService) {
				svc.On("Reorder", mock.Anything, "tours", id, "down").Return(service.ErrNoNeighbor)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:    "neighbor in another group",
			idParam: id.String(),
			body:    ReorderReq{Direction: "up"},
			setup: func(svc *MockContentService) {
				svc.On("Reorder", mock.Anything, "tours", id, "up").Return(service.ErrCrossGroupReorder)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid direction",
			idParam:        id.String(),
			body:           ReorderReq{Direction: "sideways"},
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity ID",
			idParam:        "invalid-uuid",
			body:           ReorderReq{Direction: "up"},
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockContentService{}
			tt.setup(mockService)
			router := setupContentRouter(NewContentHandler(mockService))

			body, _ := sonic.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/content/tours/"+tt.idParam+"/reorder", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestContentHandler_AddSlot(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           SlotReq
		setup          func(*MockContentService)
		expectedStatus int
	}{
		{
			name: "successful slot addition",
			body: SlotReq{Date: "2026-09-12", StartTime: "09:30", EndTime: "12:00"},
			setup: func(svc *MockContentService) {
				e := &model.Entity{ID: id}
				svc.On("Get", mock.Anything, "tours", id).Return(e, nil)
				svc.On("AddSlot", e, model.AvailabilitySlot{Date: "2026-09-12", StartTime: "09:30", EndTime: "12:00"}).Return(nil)
				svc.On("Save", mock.Anything, "tours", e).Return(e, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "duplicate date is rejected",
			body: SlotReq{Date: "2026-09-12"},
			setup: func(svc *MockContentService) {
				e := &model.Entity{ID: id}
				svc.On("Get", mock.Anything, "tours", id).Return(e, nil)
				svc.On("AddSlot", e, mock.Anything).Return(service.ErrSlotDuplicate)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "malformed date",
			body:           SlotReq{Date: "12/09/2026"},
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed start time",
			body:           SlotReq{Date: "2026-09-12", StartTime: "9:3"},
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockContentService{}
			tt.setup(mockService)
			router := setupContentRouter(NewContentHandler(mockService))

			body, _ := sonic.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/content/tours/"+id.String()+"/slots", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestContentHandler_DeleteEntity(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		idParam        string
		setup          func(*MockContentService)
		expectedStatus int
	}{
		{
			name:    "successful deletion",
			idParam: id.String(),
			setup: func(svc *MockContentService) {
				svc.On("Delete", mock.Anything, "tours", id).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "entity not found",
			idParam: id.String(),
			setup: func(svc *MockContentService) {
				svc.On("Delete", mock.Anything, "tours", id).Return(service.ErrEntityNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid entity ID",
			idParam:        "invalid-uuid",
			setup:          func(svc *MockContentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockContentService{}
			tt.setup(mockService)
			router := setupContentRouter(NewContentHandler(mockService))

			req := httptest.NewRequest("DELETE", "/content/tours/"+tt.idParam, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := sonic.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
