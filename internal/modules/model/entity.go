package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Supported locales. Italian is the primary locale: its title and
// description are mirrored to the root columns for categories that keep the
// denormalized copy.
const (
	LocaleIT = "it"
	LocaleEN = "en"
)

func Locales() []string { return []string{LocaleIT, LocaleEN} }

// LocaleRecord is the per-language bundle of an entity's textual fields.
// Extra carries category-specific translatable fields (e.g. cuisine for
// restaurants), keyed by field name.
type LocaleRecord struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Translations maps locale code to its record. Persisted as one JSONB
// column so a row always carries both language copies together.
type Translations map[string]LocaleRecord

// AvailabilitySlot is one bookable date with its time window. Slots are
// unique by date within an entity and kept sorted ascending.
type AvailabilitySlot struct {
	Date      string `json:"date"` // YYYY-MM-DD
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Entity is the generic localized row every content category is stored as.
// The category itself is implied by the table the row lives in; Category is
// populated from the registry when rows are loaded.
type Entity struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Category string    `gorm:"-" json:"category,omitempty"`

	// Root-level mirror of the primary locale.
	Title       string `gorm:"type:text" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Translations datatypes.JSONType[Translations] `gorm:"type:jsonb;not null" swaggertype:"object" json:"translations"`

	Subcategory     string                      `gorm:"type:text;index" json:"subcategory,omitempty"`
	Images          datatypes.JSONSlice[string] `gorm:"type:jsonb" swaggertype:"array,string" json:"images"`
	Price           *float64                    `gorm:"type:numeric" json:"price,omitempty"`
	DurationMinutes int                         `json:"duration_minutes,omitempty"`
	MaxParticipants int                         `json:"max_participants,omitempty"`
	Location        string                      `gorm:"type:text" json:"location,omitempty"`
	DisplayOrder    int                         `gorm:"index" json:"display_order"`
	Visible         *bool                       `json:"visible"`

	AvailableDates datatypes.JSONType[[]AvailabilitySlot] `gorm:"type:jsonb" swaggertype:"array,object" json:"available_dates"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsNew reports whether the entity has not been persisted yet.
func (e *Entity) IsNew() bool { return e.ID == uuid.Nil }

// Locale returns the record for the requested locale, falling back to the
// primary locale field-by-field when the requested copy is empty.
func (e *Entity) Locale(locale string) LocaleRecord {
	tr := e.Translations.Data()
	rec := tr[locale]
	if locale == LocaleIT {
		return rec
	}
	primary := tr[LocaleIT]
	if rec.Title == "" {
		rec.Title = primary.Title
	}
	if rec.Description == "" {
		rec.Description = primary.Description
	}
	return rec
}

// IsVisible applies the category default when the flag was never set.
func (e *Entity) IsVisible(defaultVisible bool) bool {
	if e.Visible == nil {
		return defaultVisible
	}
	return *e.Visible
}
