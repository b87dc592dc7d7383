package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/calabriando/api/internal/modules/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func PublicCacheKey(category, locale string) string {
	return fmt.Sprintf("public:%s:%s", category, locale)
}

func PublicHomeCacheKey(locale string) string {
	return fmt.Sprintf("public:home:%s", locale)
}

// Categories aggregated on the public home payload.
var homeCategories = []string{"tours", "adventures", "events", "suggestions"}

// PublicEntity is the visitor-facing projection of an entity: one locale
// resolved, invisible rows dropped, admin-only fields stripped.
type PublicEntity struct {
	ID              uuid.UUID                `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Extra           map[string]string        `json:"extra,omitempty"`
	Subcategory     string                   `json:"subcategory,omitempty"`
	Images          []string                 `json:"images"`
	Price           *float64                 `json:"price,omitempty"`
	DurationMinutes int                      `json:"duration_minutes,omitempty"`
	MaxParticipants int                      `json:"max_participants,omitempty"`
	Location        string                   `json:"location,omitempty"`
	AvailableDates  []model.AvailabilitySlot `json:"available_dates,omitempty"`
}

// PublicDish is the visitor-facing projection of one recipe entry.
type PublicDish struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Brief      string    `json:"brief,omitempty"`
	RecipeHTML string    `json:"recipe_html,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
}

// PublicGastronomyCategory is one recipe category with the requested
// locale's dish list resolved.
type PublicGastronomyCategory struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url,omitempty"`
	Dishes      []PublicDish `json:"dishes"`
}

// PublicService serves the site renderer: published rows only, one locale
// at a time, cached in Redis until an admin write invalidates the category.
type PublicService interface {
	List(ctx context.Context, category, locale string) ([]PublicEntity, error)
	Home(ctx context.Context, locale string) (map[string][]PublicEntity, error)
	Gastronomy(ctx context.Context, locale string) ([]PublicGastronomyCategory, error)
	Availability(ctx context.Context, category string, id uuid.UUID) ([]model.AvailabilitySlot, error)
}

type publicService struct {
	content    ContentService
	gastronomy GastronomyService
	cache      *redis.Client
	ttl        time.Duration
	log        *zap.Logger
}

func NewPublicService(content ContentService, gastronomy GastronomyService, cache *redis.Client, ttl time.Duration, log *zap.Logger) PublicService {
	return &publicService{content: content, gastronomy: gastronomy, cache: cache, ttl: ttl, log: log}
}

func publicLocale(locale string) string {
	if locale != model.LocaleIT && locale != model.LocaleEN {
		return model.LocaleIT
	}
	return locale
}

func (s *publicService) List(ctx context.Context, category, locale string) ([]PublicEntity, error) {
	locale = publicLocale(locale)

	key := PublicCacheKey(category, locale)
	var cached []PublicEntity
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	cfg, err := s.content.Config(category)
	if err != nil {
		return nil, err
	}
	rows, err := s.content.LoadAll(ctx, category)
	if err != nil {
		return nil, err
	}

	out := make([]PublicEntity, 0, len(rows))
	for i := range rows {
		e := &rows[i]
		if !e.IsVisible(cfg.DefaultVisible) {
			continue
		}
		out = append(out, project(e, locale))
	}

	s.toCache(ctx, key, out)
	return out, nil
}

// Home loads the landing-page categories concurrently; a single failing
// category fails the aggregate so the page never renders half-stale data.
// The assembled payload is cached whole; admin writes to any section
// category drop it.
func (s *publicService) Home(ctx context.Context, locale string) (map[string][]PublicEntity, error) {
	locale = publicLocale(locale)

	key := PublicHomeCacheKey(locale)
	var cached map[string][]PublicEntity
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	sections := make(map[string][]PublicEntity, len(homeCategories))
	g, gctx := errgroup.WithContext(ctx)

	type result struct {
		category string
		items    []PublicEntity
	}
	results := make(chan result, len(homeCategories))

	for _, category := range homeCategories {
		g.Go(func() error {
			items, err := s.List(gctx, category, locale)
			if err != nil {
				return fmt.Errorf("home section %s: %w", category, err)
			}
			results <- result{category: category, items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	for r := range results {
		sections[r.category] = r.items
	}

	s.toCache(ctx, key, sections)
	return sections, nil
}

// Gastronomy serves the recipe categories with the requested locale's dish
// list, cached under the keys the gastronomy editor invalidates on write.
func (s *publicService) Gastronomy(ctx context.Context, locale string) ([]PublicGastronomyCategory, error) {
	locale = publicLocale(locale)

	key := PublicCacheKey("gastronomy", locale)
	var cached []PublicGastronomyCategory
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.gastronomy.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PublicGastronomyCategory, 0, len(rows))
	for i := range rows {
		g := &rows[i]
		if g.Visible != nil && !*g.Visible {
			continue
		}
		out = append(out, projectGastronomy(g, locale))
	}

	s.toCache(ctx, key, out)
	return out, nil
}

func (s *publicService) Availability(ctx context.Context, category string, id uuid.UUID) ([]model.AvailabilitySlot, error) {
	e, err := s.content.Get(ctx, category, id)
	if err != nil {
		return nil, err
	}
	return e.AvailableDates.Data(), nil
}

func project(e *model.Entity, locale string) PublicEntity {
	rec := e.Locale(locale)
	return PublicEntity{
		ID:              e.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		Extra:           rec.Extra,
		Subcategory:     e.Subcategory,
		Images:          e.Images,
		Price:           e.Price,
		DurationMinutes: e.DurationMinutes,
		MaxParticipants: e.MaxParticipants,
		Location:        e.Location,
		AvailableDates:  e.AvailableDates.Data(),
	}
}

func projectGastronomy(g *model.GastronomyCategory, locale string) PublicGastronomyCategory {
	tr := g.Translations.Data()
	rec := tr[locale]
	if locale != model.LocaleIT {
		primary := tr[model.LocaleIT]
		if rec.Title == "" {
			rec.Title = primary.Title
		}
		if rec.Description == "" {
			rec.Description = primary.Description
		}
	}

	// The dish list is per locale by design; an empty requested-locale
	// list falls back to the primary list so every category renders.
	dishes := g.Dishes.Data()[locale]
	if len(dishes) == 0 && locale != model.LocaleIT {
		dishes = g.Dishes.Data()[model.LocaleIT]
	}
	out := make([]PublicDish, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, PublicDish{
			ID:         d.ID,
			Name:       d.Name,
			Brief:      d.Brief,
			RecipeHTML: d.RecipeHTML,
			ImageURL:   d.ImageURL,
		})
	}

	return PublicGastronomyCategory{
		ID:          g.ID,
		Title:       rec.Title,
		Description: rec.Description,
		ImageURL:    g.ImageURL,
		Dishes:      out,
	}
}

func (s *publicService) fromCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		s.log.Warn("corrupt public cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *publicService) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn("public cache write failed", zap.String("key", key), zap.Error(err))
	}
}
