package service

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/repo"
)

type MockEntityRepo struct {
	mock.Mock
}

func (m *MockEntityRepo) ListAll(ctx context.Context, cfg model.CategoryConfig) ([]model.Entity, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Entity), args.Error(1)
}

func (m *MockEntityRepo) Get(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) (*model.Entity, error) {
	args := m.Called(ctx, cfg, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entity), args.Error(1)
}

func (m *MockEntityRepo) Insert(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error {
	args := m.Called(ctx, cfg, e)
	return args.Error(0)
}

func (m *MockEntityRepo) Update(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error {
	args := m.Called(ctx, cfg, e)
	return args.Error(0)
}

func (m *MockEntityRepo) Delete(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) error {
	args := m.Called(ctx, cfg, id)
	return args.Error(0)
}

func (m *MockEntityRepo) MaxDisplayOrder(ctx context.Context, cfg model.CategoryConfig) (int, error) {
	args := m.Called(ctx, cfg)
	return args.Int(0), args.Error(1)
}

func (m *MockEntityRepo) SwapOrder(ctx context.Context, cfg model.CategoryConfig, a, b *model.Entity) error {
	args := m.Called(ctx, cfg, a, b)
	return args.Error(0)
}

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

func asValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve
}

func testRegistry(t *testing.T) *model.Registry {
	t.Helper()
	r, err := model.LoadRegistry()
	require.NoError(t, err)
	return r
}

func newContentService(t *testing.T, entities repo.EntityRepo, media MediaService) ContentService {
	t.Helper()
	return NewContentService(testRegistry(t), entities, media, NewSanitizer(), nil, zap.NewNop())
}

func translations(itTitle, enTitle string) datatypes.JSONType[model.Translations] {
	return datatypes.NewJSONType(model.Translations{
		model.LocaleIT: {Title: itTitle},
		model.LocaleEN: {Title: enTitle},
	})
}

func price(v float64) *float64 { return &v }

func validTour(id uuid.UUID) *model.Entity {
	return &model.Entity{
		ID:              id,
		Translations:    translations("Tour della Sila", "Sila tour"),
		Subcategory:     "mountain",
		Images:          datatypes.JSONSlice[string]{"https://cdn.example.com/tours/a.jpg"},
		Price:           price(49.5),
		MaxParticipants: 12,
		AvailableDates: datatypes.NewJSONType([]model.AvailabilitySlot{
			{Date: "2026-09-01", StartTime: "09:00", EndTime: "12:00"},
		}),
	}
}

func TestContentService_Save(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		entity    *model.Entity
		setupRepo func(*MockEntityRepo)
		expectErr bool
		checkErr  func(*testing.T, error)
		check     func(*testing.T, *model.Entity)
	}{
		{
			name:     "insert valid tour",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.Nil)
				e.ID = uuid.Nil
				return e
			}(),
			setupRepo: func(r *MockEntityRepo) {
				r.On("Insert", mock.Anything, mock.Anything, mock.AnythingOfType("*model.Entity")).Return(nil)
			},
			check: func(t *testing.T, e *model.Entity) {
				assert.Equal(t, "Tour della Sila", e.Title)
				assert.Equal(t, "tours", e.Category)
			},
		},
		{
			name:     "missing titles reject both locales",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Translations = translations("", "")
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "translations.it.title")
				assert.Contains(t, ve.Fields, "translations.en.title")
			},
		},
		{
			name:     "one missing locale title still rejects",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Translations = translations("Solo italiano", "")
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.NotContains(t, ve.Fields, "translations.it.title")
				assert.Contains(t, ve.Fields, "translations.en.title")
			},
		},
		{
			name:     "unknown subcategory rejected",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Subcategory = "desert"
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "subcategory")
			},
		},
		{
			name:     "unset subcategory rejected when taxonomy exists",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Subcategory = ""
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "subcategory")
			},
		},
		{
			name:     "missing image rejected",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Images = datatypes.JSONSlice[string]{}
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "images")
			},
		},
		{
			name:     "negative price rejected",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.Price = price(-1)
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "price")
			},
		},
		{
			name:     "duplicate slot dates rejected",
			category: "tours",
			entity: func() *model.Entity {
				e := validTour(uuid.New())
				e.AvailableDates = datatypes.NewJSONType([]model.AvailabilitySlot{
					{Date: "2026-09-01"},
					{Date: "2026-09-01"},
				})
				return e
			}(),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				ve := asValidation(t, err)
				assert.Contains(t, ve.Fields, "available_dates")
			},
		},
		{
			name:     "description html is sanitized before persist",
			category: "suggestions",
			entity: &model.Entity{
				Translations: datatypes.NewJSONType(model.Translations{
					model.LocaleIT: {Title: "Tropea", Description: `<p>bella</p><script>alert(1)</script>`},
					model.LocaleEN: {Title: "Tropea", Description: `<img src=x onerror="steal()">view`},
				}),
				Images: datatypes.JSONSlice[string]{"https://cdn.example.com/suggestions/t.jpg"},
			},
			setupRepo: func(r *MockEntityRepo) {
				r.On("MaxDisplayOrder", mock.Anything, mock.Anything).Return(0, nil).Maybe()
				r.On("Insert", mock.Anything, mock.Anything, mock.AnythingOfType("*model.Entity")).Return(nil)
			},
			check: func(t *testing.T, e *model.Entity) {
				tr := e.Translations.Data()
				assert.NotContains(t, tr[model.LocaleIT].Description, "<script>")
				assert.Contains(t, tr[model.LocaleIT].Description, "<p>bella</p>")
				assert.NotContains(t, tr[model.LocaleEN].Description, "onerror")
				// Root description mirrors the sanitized primary locale.
				assert.Equal(t, tr[model.LocaleIT].Description, e.Description)
			},
		},
		{
			name:      "unknown category",
			category:  "castles",
			entity:    validTour(uuid.New()),
			expectErr: true,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrCategoryUnknown)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := new(MockEntityRepo)
			if tt.setupRepo != nil {
				tt.setupRepo(entities)
			}
			svc := newContentService(t, entities, new(MockMediaService))

			saved, err := svc.Save(context.Background(), tt.category, tt.entity)
			if tt.expectErr {
				require.Error(t, err)
				if tt.checkErr != nil {
					tt.checkErr(t, err)
				}
				// Validation failures never reach the store.
				entities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
				entities.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, saved)
			}
			entities.AssertExpectations(t)
		})
	}
}

// A brand-new entity in an image-requiring category is created by uploading
// the asset first, attaching the returned URL to the form, then saving.
func TestContentService_CreateWithUploadedImage(t *testing.T) {
	entities := new(MockEntityRepo)
	entities.On("MaxDisplayOrder", mock.Anything, mock.Anything).Return(0, nil)
	entities.On("Insert", mock.Anything, mock.Anything, mock.AnythingOfType("*model.Entity")).Return(nil)
	svc := newContentService(t, entities, new(MockMediaService))

	e, err := svc.NewTemplate(context.Background(), "tours", "")
	require.NoError(t, err)
	require.True(t, e.IsNew())
	e.Translations = translations("Tour della costa", "Coast tour")
	e.Subcategory = "sea"
	e.Price = price(30)
	e.MaxParticipants = 8

	// Without an image the first save is rejected.
	_, err = svc.Save(context.Background(), "tours", e)
	require.Error(t, err)
	ve := asValidation(t, err)
	assert.Contains(t, ve.Fields, "images")
	entities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)

	// With the pre-save upload's URL attached the same payload persists.
	e.Images = datatypes.JSONSlice[string]{"https://cdn.example.com/tours/coast.webp"}
	saved, err := svc.Save(context.Background(), "tours", e)
	require.NoError(t, err)
	assert.Equal(t, "Tour della costa", saved.Title)
	entities.AssertCalled(t, "Insert", mock.Anything, mock.Anything, mock.AnythingOfType("*model.Entity"))
}

func TestContentService_NewTemplate(t *testing.T) {
	entities := new(MockEntityRepo)
	entities.On("MaxDisplayOrder", mock.Anything, mock.Anything).Return(4, nil)
	svc := newContentService(t, entities, new(MockMediaService))

	e, err := svc.NewTemplate(context.Background(), "tours", "sea")
	require.NoError(t, err)

	assert.True(t, e.IsNew())
	assert.Equal(t, "sea", e.Subcategory)
	assert.Equal(t, 5, e.DisplayOrder)
	tr := e.Translations.Data()
	assert.Contains(t, tr, model.LocaleIT)
	assert.Contains(t, tr, model.LocaleEN)
	assert.NotNil(t, e.Images)

	// Unknown filter value is simply not seeded.
	e, err = svc.NewTemplate(context.Background(), "tours", "desert")
	require.NoError(t, err)
	assert.Empty(t, e.Subcategory)
}

func TestContentService_Delete_CascadesImages(t *testing.T) {
	id := uuid.New()
	e := validTour(id)
	e.Images = datatypes.JSONSlice[string]{
		"https://cdn.example.com/tours/a.jpg",
		"https://cdn.example.com/tours/b.jpg",
	}

	entities := new(MockEntityRepo)
	entities.On("Get", mock.Anything, mock.Anything, id).Return(e, nil)
	entities.On("Delete", mock.Anything, mock.Anything, id).Return(nil)

	media := new(MockMediaService)
	media.On("RemoveAll", mock.Anything, []string(e.Images)).Return()

	svc := newContentService(t, entities, media)
	require.NoError(t, svc.Delete(context.Background(), "tours", id))

	entities.AssertExpectations(t)
	media.AssertExpectations(t)
}

func TestContentService_Reorder(t *testing.T) {
	makeRows := func() []model.Entity {
		return []model.Entity{
			{ID: uuid.New(), Subcategory: "city", DisplayOrder: 1},
			{ID: uuid.New(), Subcategory: "city", DisplayOrder: 2},
			{ID: uuid.New(), Subcategory: "sea", DisplayOrder: 3},
		}
	}

	t.Run("first row cannot move up", func(t *testing.T) {
		rows := makeRows()
		entities := new(MockEntityRepo)
		entities.On("ListAll", mock.Anything, mock.Anything).Return(rows, nil)
		svc := newContentService(t, entities, new(MockMediaService))

		err := svc.Reorder(context.Background(), "tours", rows[0].ID, MoveUp)
		assert.ErrorIs(t, err, ErrNoNeighbor)
		entities.AssertNotCalled(t, "SwapOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last row cannot move down", func(t *testing.T) {
		rows := makeRows()
		entities := new(MockEntityRepo)
		entities.On("ListAll", mock.Anything, mock.Anything).Return(rows, nil)
		svc := newContentService(t, entities, new(MockMediaService))

		err := svc.Reorder(context.Background(), "tours", rows[2].ID, MoveDown)
		assert.ErrorIs(t, err, ErrNoNeighbor)
	})

	t.Run("cross-group move rejected with no writes", func(t *testing.T) {
		rows := makeRows()
		entities := new(MockEntityRepo)
		entities.On("ListAll", mock.Anything, mock.Anything).Return(rows, nil)
		svc := newContentService(t, entities, new(MockMediaService))

		err := svc.Reorder(context.Background(), "tours", rows[1].ID, MoveDown)
		assert.ErrorIs(t, err, ErrCrossGroupReorder)
		entities.AssertNotCalled(t, "SwapOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same-group move swaps with neighbor", func(t *testing.T) {
		rows := makeRows()
		entities := new(MockEntityRepo)
		entities.On("ListAll", mock.Anything, mock.Anything).Return(rows, nil)
		entities.On("SwapOrder", mock.Anything, mock.Anything, mock.AnythingOfType("*model.Entity"), mock.AnythingOfType("*model.Entity")).Return(nil)
		svc := newContentService(t, entities, new(MockMediaService))

		require.NoError(t, svc.Reorder(context.Background(), "tours", rows[1].ID, MoveUp))
		entities.AssertExpectations(t)
	})

	t.Run("unknown id", func(t *testing.T) {
		entities := new(MockEntityRepo)
		entities.On("ListAll", mock.Anything, mock.Anything).Return(makeRows(), nil)
		svc := newContentService(t, entities, new(MockMediaService))

		err := svc.Reorder(context.Background(), "tours", uuid.New(), MoveUp)
		assert.ErrorIs(t, err, ErrEntityNotFound)
	})
}

func TestContentService_Slots(t *testing.T) {
	svc := newContentService(t, new(MockEntityRepo), new(MockMediaService))

	e := &model.Entity{}
	require.NoError(t, svc.AddSlot(e, model.AvailabilitySlot{Date: "2026-09-10", StartTime: "10:00"}))
	require.NoError(t, svc.AddSlot(e, model.AvailabilitySlot{Date: "2026-09-01", StartTime: "09:00"}))
	require.NoError(t, svc.AddSlot(e, model.AvailabilitySlot{Date: "2026-09-05"}))

	slots := e.AvailableDates.Data()
	require.Len(t, slots, 3)
	assert.Equal(t, "2026-09-01", slots[0].Date)
	assert.Equal(t, "2026-09-05", slots[1].Date)
	assert.Equal(t, "2026-09-10", slots[2].Date)

	// Same date again is a duplicate regardless of times.
	err := svc.AddSlot(e, model.AvailabilitySlot{Date: "2026-09-05", StartTime: "15:00"})
	assert.ErrorIs(t, err, ErrSlotDuplicate)
	assert.Len(t, e.AvailableDates.Data(), 3)

	require.NoError(t, svc.RemoveSlot(e, "2026-09-05"))
	assert.Len(t, e.AvailableDates.Data(), 2)

	err = svc.RemoveSlot(e, "2026-09-05")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
