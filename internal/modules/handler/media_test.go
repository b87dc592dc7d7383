package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/service"
)

// MockMediaService is a mock implementation of service.MediaService
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, cfg model.CategoryConfig, currentImages []string, filename string, body io.Reader) (string, error) {
	args := m.Called(ctx, cfg, currentImages, filename, body)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) Replace(ctx context.Context, cfg model.CategoryConfig, oldURL string, filename string, body io.Reader) (string, error) {
	args := m.Called(ctx, cfg, oldURL, filename, body)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) Remove(ctx context.Context, publicURL string) {
	m.Called(ctx, publicURL)
}

func (m *MockMediaService) RemoveAll(ctx context.Context, publicURLs []string) {
	m.Called(ctx, publicURLs)
}

func setupMediaRouter(h *MediaHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/content/:category/images", h.UploadDraftImage)
	r.POST("/content/:category/:id/images", h.UploadImage)
	r.DELETE("/content/:category/:id/images", h.RemoveImage)
	return r
}

func multipartImage(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestMediaHandler_UploadImage(t *testing.T) {
	id := uuid.New()
	singleImageCfg := model.CategoryConfig{Slug: "tours", Table: "tours", MaxImages: 1}
	galleryCfg := model.CategoryConfig{Slug: "events", Table: "special_events", MaxImages: 5}

	t.Run("first upload appends the slot", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id}
		content.On("Config", "tours").Return(singleImageCfg, nil)
		content.On("Get", mock.Anything, "tours", id).Return(e, nil)
		media.On("Upload", mock.Anything, singleImageCfg, mock.Anything, "beach.webp", mock.Anything).
			Return("https://cdn.example.com/tours/beach.webp", nil)
		content.On("Save", mock.Anything, "tours", mock.MatchedBy(func(e *model.Entity) bool {
			return len(e.Images) == 1 && e.Images[0] == "https://cdn.example.com/tours/beach.webp"
		})).Return(e, nil)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "beach.webp")
		req := httptest.NewRequest("POST", "/content/tours/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		content.AssertExpectations(t)
		media.AssertExpectations(t)
	})

	t.Run("full single-image slot goes through replace", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id, Images: datatypes.NewJSONSlice([]string{"https://cdn.example.com/tours/old.webp"})}
		content.On("Config", "tours").Return(singleImageCfg, nil)
		content.On("Get", mock.Anything, "tours", id).Return(e, nil)
		media.On("Replace", mock.Anything, singleImageCfg, "https://cdn.example.com/tours/old.webp", "new.webp", mock.Anything).
			Return("https://cdn.example.com/tours/new.webp", nil)
		content.On("Save", mock.Anything, "tours", mock.MatchedBy(func(e *model.Entity) bool {
			return len(e.Images) == 1 && e.Images[0] == "https://cdn.example.com/tours/new.webp"
		})).Return(e, nil)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "new.webp")
		req := httptest.NewRequest("POST", "/content/tours/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		media.AssertExpectations(t)
	})

	t.Run("failed replace leaves the stored image untouched", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id, Images: datatypes.NewJSONSlice([]string{"https://cdn.example.com/tours/old.webp"})}
		content.On("Config", "tours").Return(singleImageCfg, nil)
		content.On("Get", mock.Anything, "tours", id).Return(e, nil)
		media.On("Replace", mock.Anything, singleImageCfg, "https://cdn.example.com/tours/old.webp", "new.webp", mock.Anything).
			Return("", errors.New("bucket unreachable"))
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "new.webp")
		req := httptest.NewRequest("POST", "/content/tours/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "https://cdn.example.com/tours/old.webp", e.Images[0])
		content.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("full gallery is rejected", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id, Images: datatypes.NewJSONSlice([]string{"a", "b", "c", "d", "e"})}
		content.On("Config", "events").Return(galleryCfg, nil)
		content.On("Get", mock.Anything, "events", id).Return(e, nil)
		media.On("Upload", mock.Anything, galleryCfg, mock.Anything, "f.webp", mock.Anything).
			Return("", service.ErrGalleryFull)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "f.webp")
		req := httptest.NewRequest("POST", "/content/events/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		content.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing file part", func(t *testing.T) {
		router := setupMediaRouter(NewMediaHandler(&MockContentService{}, &MockMediaService{}))

		req := httptest.NewRequest("POST", "/content/tours/"+id.String()+"/images", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMediaHandler_UploadDraftImage(t *testing.T) {
	cfg := model.CategoryConfig{Slug: "tours", Table: "tours", MaxImages: 1, RequiresImage: true}

	t.Run("returns the stored URL without touching any row", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		content.On("Config", "tours").Return(cfg, nil)
		media.On("Upload", mock.Anything, cfg, mock.Anything, "beach.webp", mock.Anything).
			Return("https://cdn.example.com/tours/beach.webp", nil)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "beach.webp")
		req := httptest.NewRequest("POST", "/content/tours/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data string `json:"data"`
		}
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "https://cdn.example.com/tours/beach.webp", resp.Data)
		// No entity is loaded or saved; the URL belongs to the create
		// form until the first save.
		content.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		content.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		media.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		content.On("Config", "boats").Return(model.CategoryConfig{}, service.ErrCategoryUnknown)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, contentType := multipartImage(t, "boat.webp")
		req := httptest.NewRequest("POST", "/content/boats/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing file part", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		router := setupMediaRouter(NewMediaHandler(content, media))

		req := httptest.NewRequest("POST", "/content/tours/images", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMediaHandler_RemoveImage(t *testing.T) {
	id := uuid.New()

	t.Run("slot removed then asset deleted", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id, Images: datatypes.NewJSONSlice([]string{"https://cdn.example.com/tours/a.webp"})}
		content.On("Get", mock.Anything, "tours", id).Return(e, nil)
		content.On("Save", mock.Anything, "tours", mock.MatchedBy(func(e *model.Entity) bool {
			return len(e.Images) == 0
		})).Return(e, nil)
		media.On("Remove", mock.Anything, "https://cdn.example.com/tours/a.webp").Return()
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, _ := sonic.Marshal(RemoveImageReq{URL: "https://cdn.example.com/tours/a.webp"})
		req := httptest.NewRequest("DELETE", "/content/tours/"+id.String()+"/images", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		content.AssertExpectations(t)
		media.AssertExpectations(t)
	})

	t.Run("url not on entity", func(t *testing.T) {
		content := &MockContentService{}
		media := &MockMediaService{}
		e := &model.Entity{ID: id, Images: datatypes.NewJSONSlice([]string{"https://cdn.example.com/tours/a.webp"})}
		content.On("Get", mock.Anything, "tours", id).Return(e, nil)
		router := setupMediaRouter(NewMediaHandler(content, media))

		body, _ := sonic.Marshal(RemoveImageReq{URL: "https://cdn.example.com/tours/other.webp"})
		req := httptest.NewRequest("DELETE", "/content/tours/"+id.String()+"/images", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		media.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})
}
