package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dish is one recipe entry inside a gastronomy category. The ID is stable
// across locales so the same dish can be edited per language; the lists
// themselves are stored per locale and may diverge.
type Dish struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Brief      string    `json:"brief"`
	RecipeHTML string    `json:"recipe_html"`
	ImageURL   string    `json:"image_url"`
}

// DishLists maps locale code to that language's ordered dish list.
type DishLists map[string][]Dish

// GastronomyCategory is the two-level localized entity: a localized
// category record owning per-locale dish lists.
type GastronomyCategory struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Title       string `gorm:"type:text" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Translations datatypes.JSONType[Translations] `gorm:"type:jsonb;not null" swaggertype:"object" json:"translations"`
	ImageURL     string                           `gorm:"type:text" json:"image_url"`
	Dishes       datatypes.JSONType[DishLists]    `gorm:"type:jsonb" swaggertype:"object" json:"dishes"`

	DisplayOrder int   `gorm:"index" json:"display_order"`
	Visible      *bool `json:"visible"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GastronomyCategory) TableName() string { return "gastronomy_categories" }

// FindDish returns the index of a dish in one locale's list, -1 if absent.
func (g *GastronomyCategory) FindDish(locale string, dishID uuid.UUID) int {
	for i, d := range g.Dishes.Data()[locale] {
		if d.ID == dishID {
			return i
		}
	}
	return -1
}
