package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reorder directions.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// ContentService is the localized-entity editor engine. Every content
// category runs through it, parameterized by the category registry: load,
// template, validate, save, delete with media cascade, and display-order
// reordering.
type ContentService interface {
	Categories() []model.CategoryConfig
	Config(category string) (model.CategoryConfig, error)

	LoadAll(ctx context.Context, category string) ([]model.Entity, error)
	Get(ctx context.Context, category string, id uuid.UUID) (*model.Entity, error)
	// NewTemplate builds a fresh unsaved entity: empty translations for
	// every configured field, subcategory pre-seeded from the active
	// filter, next display order for orderable categories. No store
	// side effect.
	NewTemplate(ctx context.Context, category string, subcategory string) (*model.Entity, error)
	// Save validates, sanitizes rich text, mirrors the primary locale to
	// the root columns and inserts or updates. Validation failure blocks
	// the write entirely.
	Save(ctx context.Context, category string, e *model.Entity) (*model.Entity, error)
	// Delete removes the row after a best-effort cascade delete of its
	// stored images. Media failures are logged, never blocking.
	Delete(ctx context.Context, category string, id uuid.UUID) error
	// Reorder swaps display order with the immediate neighbor in the
	// given direction. Neighbors in a different taxonomy group reject
	// the move with no writes.
	Reorder(ctx context.Context, category string, id uuid.UUID, direction string) error

	AddSlot(e *model.Entity, slot model.AvailabilitySlot) error
	RemoveSlot(e *model.Entity, date string) error
}

type contentService struct {
	registry *model.Registry
	entities repo.EntityRepo
	media    MediaService
	sanitize *Sanitizer
	cache    *redis.Client
	log      *zap.Logger
}

func NewContentService(registry *model.Registry, entities repo.EntityRepo, media MediaService, sanitize *Sanitizer, cache *redis.Client, log *zap.Logger) ContentService {
	return &contentService{
		registry: registry,
		entities: entities,
		media:    media,
		sanitize: sanitize,
		cache:    cache,
		log:      log,
	}
}

func (s *contentService) Categories() []model.CategoryConfig {
	return s.registry.All()
}

func (s *contentService) Config(category string) (model.CategoryConfig, error) {
	cfg, ok := s.registry.Get(category)
	if !ok {
		return model.CategoryConfig{}, fmt.Errorf("%w: %s", ErrCategoryUnknown, category)
	}
	return cfg, nil
}

func (s *contentService) LoadAll(ctx context.Context, category string) ([]model.Entity, error) {
	cfg, err := s.Config(category)
	if err != nil {
		return nil, err
	}
	rows, err := s.entities.ListAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", category, err)
	}
	for i := range rows {
		NormalizeEntity(cfg, &rows[i])
	}
	return rows, nil
}

func (s *contentService) Get(ctx context.Context, category string, id uuid.UUID) (*model.Entity, error) {
	cfg, err := s.Config(category)
	if err != nil {
		return nil, err
	}
	e, err := s.entities.Get(ctx, cfg, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	NormalizeEntity(cfg, e)
	return e, nil
}

func (s *contentService) NewTemplate(ctx context.Context, category string, subcategory string) (*model.Entity, error) {
	cfg, err := s.Config(category)
	if err != nil {
		return nil, err
	}

	e := &model.Entity{Category: cfg.Slug}
	NormalizeEntity(cfg, e)

	if cfg.HasTaxonomy() && cfg.AllowsSubcategory(subcategory) {
		e.Subcategory = subcategory
	}
	if cfg.Orderable {
		max, err := s.entities.MaxDisplayOrder(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("next display order: %w", err)
		}
		e.DisplayOrder = max + 1
	}
	return e, nil
}

func (s *contentService) Save(ctx context.Context, category string, e *model.Entity) (*model.Entity, error) {
	cfg, err := s.Config(category)
	if err != nil {
		return nil, err
	}

	NormalizeEntity(cfg, e)
	if err := ValidateEntity(cfg, e); err != nil {
		return nil, err
	}

	// Sanitized HTML is the canonical stored form of every description.
	tr := e.Translations.Data()
	for _, locale := range model.Locales() {
		rec := tr[locale]
		rec.Description = s.sanitize.Sanitize(rec.Description)
		tr[locale] = rec
	}
	e.Translations = datatypesJSON(tr)

	// Root columns mirror the primary locale.
	primary := tr[model.LocaleIT]
	e.Title = primary.Title
	e.Description = primary.Description

	if e.IsNew() {
		err = s.entities.Insert(ctx, cfg, e)
	} else {
		err = s.entities.Update(ctx, cfg, e)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", category, err)
	}

	e.Category = cfg.Slug
	s.invalidatePublic(ctx, cfg.Slug)
	return e, nil
}

func (s *contentService) Delete(ctx context.Context, category string, id uuid.UUID) error {
	cfg, err := s.Config(category)
	if err != nil {
		return err
	}

	e, err := s.entities.Get(ctx, cfg, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityNotFound
		}
		return err
	}

	// Cascade the stored images first; a storage failure must not keep
	// the row alive.
	s.media.RemoveAll(ctx, e.Images)

	if err := s.entities.Delete(ctx, cfg, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityNotFound
		}
		return fmt.Errorf("delete %s: %w", category, err)
	}

	s.invalidatePublic(ctx, cfg.Slug)
	return nil
}

func (s *contentService) Reorder(ctx context.Context, category string, id uuid.UUID, direction string) error {
	cfg, err := s.Config(category)
	if err != nil {
		return err
	}
	if !cfg.Orderable {
		return fmt.Errorf("category %s has no display order", category)
	}
	if direction != MoveUp && direction != MoveDown {
		return fmt.Errorf("invalid direction %q", direction)
	}

	rows, err := s.entities.ListAll(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load %s: %w", category, err)
	}

	idx := -1
	for i := range rows {
		if rows[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEntityNotFound
	}

	nIdx := idx - 1
	if direction == MoveDown {
		nIdx = idx + 1
	}
	if nIdx < 0 || nIdx >= len(rows) {
		return ErrNoNeighbor
	}

	target, neighbor := &rows[idx], &rows[nIdx]
	if target.Subcategory != neighbor.Subcategory {
		return ErrCrossGroupReorder
	}

	if err := s.entities.SwapOrder(ctx, cfg, target, neighbor); err != nil {
		return err
	}

	s.invalidatePublic(ctx, cfg.Slug)
	return nil
}

// AddSlot inserts a bookable date, rejecting duplicates by date and keeping
// the list sorted ascending.
func (s *contentService) AddSlot(e *model.Entity, slot model.AvailabilitySlot) error {
	slots := e.AvailableDates.Data()
	for _, existing := range slots {
		if existing.Date == slot.Date {
			return ErrSlotDuplicate
		}
	}
	slots = append(slots, slot)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Date < slots[j].Date })
	e.AvailableDates = datatypesJSONSlots(slots)
	return nil
}

func (s *contentService) RemoveSlot(e *model.Entity, date string) error {
	slots := e.AvailableDates.Data()
	for i, existing := range slots {
		if existing.Date == date {
			slots = append(slots[:i], slots[i+1:]...)
			e.AvailableDates = datatypesJSONSlots(slots)
			return nil
		}
	}
	return ErrSlotNotFound
}

func (s *contentService) invalidatePublic(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		PublicCacheKey(category, model.LocaleIT), PublicCacheKey(category, model.LocaleEN),
		PublicHomeCacheKey(model.LocaleIT), PublicHomeCacheKey(model.LocaleEN),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("public cache invalidation failed",
			zap.String("category", category), zap.Error(err))
	}
}
