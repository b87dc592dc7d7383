package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GastronomyService drives the one nested editor: localized recipe
// categories owning per-locale dish lists. Dish ids stay stable across
// locales so the same dish can be edited per language; the lists themselves
// may diverge between it and en.
type GastronomyService interface {
	LoadAll(ctx context.Context) ([]model.GastronomyCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*model.GastronomyCategory, error)
	Save(ctx context.Context, g *model.GastronomyCategory) (*model.GastronomyCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpsertDish(ctx context.Context, categoryID uuid.UUID, locale string, dish model.Dish) (*model.GastronomyCategory, error)
	// RemoveDish drops a dish from one locale's list only; the other
	// locale's copy, when present, stays untouched.
	RemoveDish(ctx context.Context, categoryID uuid.UUID, locale string, dishID uuid.UUID) (*model.GastronomyCategory, error)
}

type gastronomyService struct {
	repo     repo.GastronomyRepo
	media    MediaService
	sanitize *Sanitizer
	cache    *redis.Client
	log      *zap.Logger
}

func NewGastronomyService(r repo.GastronomyRepo, media MediaService, sanitize *Sanitizer, cache *redis.Client, log *zap.Logger) GastronomyService {
	return &gastronomyService{repo: r, media: media, sanitize: sanitize, cache: cache, log: log}
}

func (s *gastronomyService) LoadAll(ctx context.Context) ([]model.GastronomyCategory, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gastronomy: %w", err)
	}
	for i := range rows {
		normalizeGastronomy(&rows[i])
	}
	return rows, nil
}

func (s *gastronomyService) Get(ctx context.Context, id uuid.UUID) (*model.GastronomyCategory, error) {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	normalizeGastronomy(g)
	return g, nil
}

func (s *gastronomyService) Save(ctx context.Context, g *model.GastronomyCategory) (*model.GastronomyCategory, error) {
	normalizeGastronomy(g)

	fields := make(map[string]string)
	tr := g.Translations.Data()
	for _, locale := range model.Locales() {
		if tr[locale].Title == "" {
			fields["translations."+locale+".title"] = "title is required"
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	for _, locale := range model.Locales() {
		rec := tr[locale]
		rec.Description = s.sanitize.Sanitize(rec.Description)
		tr[locale] = rec
	}
	g.Translations = datatypesJSON(tr)

	dishes := g.Dishes.Data()
	for locale, list := range dishes {
		for i := range list {
			list[i].RecipeHTML = s.sanitize.Sanitize(list[i].RecipeHTML)
		}
		dishes[locale] = list
	}
	g.Dishes = datatypes.NewJSONType(dishes)

	primary := tr[model.LocaleIT]
	g.Title = primary.Title
	g.Description = primary.Description

	var err error
	if g.ID == uuid.Nil {
		err = s.repo.Insert(ctx, g)
	} else {
		err = s.repo.Update(ctx, g)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save gastronomy: %w", err)
	}

	s.invalidate(ctx)
	return g, nil
}

func (s *gastronomyService) Delete(ctx context.Context, id uuid.UUID) error {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityNotFound
		}
		return err
	}

	urls := []string{g.ImageURL}
	for _, list := range g.Dishes.Data() {
		for _, d := range list {
			urls = append(urls, d.ImageURL)
		}
	}
	s.media.RemoveAll(ctx, urls)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityNotFound
		}
		return fmt.Errorf("delete gastronomy: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *gastronomyService) UpsertDish(ctx context.Context, categoryID uuid.UUID, locale string, dish model.Dish) (*model.GastronomyCategory, error) {
	if locale != model.LocaleIT && locale != model.LocaleEN {
		return nil, fmt.Errorf("unknown locale %q", locale)
	}
	if dish.Name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "dish name is required"}}
	}

	g, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	dish.RecipeHTML = s.sanitize.Sanitize(dish.RecipeHTML)

	dishes := g.Dishes.Data()
	if dish.ID == uuid.Nil {
		dish.ID = uuid.New()
		dishes[locale] = append(dishes[locale], dish)
	} else if idx := g.FindDish(locale, dish.ID); idx >= 0 {
		dishes[locale][idx] = dish
	} else {
		// An id minted in the other locale: keep it so both language
		// copies refer to the same dish.
		dishes[locale] = append(dishes[locale], dish)
	}
	g.Dishes = datatypes.NewJSONType(dishes)

	if _, err := s.persistDishes(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *gastronomyService) RemoveDish(ctx context.Context, categoryID uuid.UUID, locale string, dishID uuid.UUID) (*model.GastronomyCategory, error) {
	g, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	idx := g.FindDish(locale, dishID)
	if idx < 0 {
		return nil, ErrDishNotFound
	}

	dishes := g.Dishes.Data()
	removed := dishes[locale][idx]
	dishes[locale] = append(dishes[locale][:idx], dishes[locale][idx+1:]...)
	g.Dishes = datatypes.NewJSONType(dishes)

	if _, err := s.persistDishes(ctx, g); err != nil {
		return nil, err
	}

	// The dish image goes with the dish unless the other locale's copy
	// still points at it.
	if removed.ImageURL != "" && !imageStillReferenced(g, removed.ImageURL) {
		s.media.Remove(ctx, removed.ImageURL)
	}
	return g, nil
}

func (s *gastronomyService) persistDishes(ctx context.Context, g *model.GastronomyCategory) (*model.GastronomyCategory, error) {
	if err := s.repo.Update(ctx, g); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("save gastronomy dishes: %w", err)
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *gastronomyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{PublicCacheKey("gastronomy", model.LocaleIT), PublicCacheKey("gastronomy", model.LocaleEN)}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("gastronomy cache invalidation failed", zap.Error(err))
	}
}

func normalizeGastronomy(g *model.GastronomyCategory) {
	tr := g.Translations.Data()
	if tr == nil {
		tr = make(model.Translations, 2)
	}
	for _, locale := range model.Locales() {
		if _, ok := tr[locale]; !ok {
			tr[locale] = model.LocaleRecord{}
		}
	}
	g.Translations = datatypesJSON(tr)

	dishes := g.Dishes.Data()
	if dishes == nil {
		dishes = make(model.DishLists, 2)
	}
	for _, locale := range model.Locales() {
		if dishes[locale] == nil {
			dishes[locale] = []model.Dish{}
		}
	}
	g.Dishes = datatypes.NewJSONType(dishes)
}

func imageStillReferenced(g *model.GastronomyCategory, url string) bool {
	for _, list := range g.Dishes.Data() {
		for _, d := range list {
			if d.ImageURL == url {
				return true
			}
		}
	}
	return false
}
