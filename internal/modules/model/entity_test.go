package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestEntity_Locale(t *testing.T) {
	e := &Entity{
		Translations: datatypes.NewJSONType(Translations{
			LocaleIT: {Title: "Borghi di Calabria", Description: "Un viaggio tra i borghi"},
			LocaleEN: {Title: "Villages of Calabria"},
		}),
	}

	it := e.Locale(LocaleIT)
	assert.Equal(t, "Borghi di Calabria", it.Title)

	// The English description is empty, so the Italian copy fills in
	// field by field while the English title stays.
	en := e.Locale(LocaleEN)
	assert.Equal(t, "Villages of Calabria", en.Title)
	assert.Equal(t, "Un viaggio tra i borghi", en.Description)

	bare := &Entity{Translations: datatypes.NewJSONType(Translations{
		LocaleIT: {Title: "Solo italiano", Description: "descrizione"},
	})}
	en = bare.Locale(LocaleEN)
	assert.Equal(t, "Solo italiano", en.Title)
	assert.Equal(t, "descrizione", en.Description)
}

func TestEntity_IsVisible(t *testing.T) {
	hidden, shown := false, true

	assert.True(t, (&Entity{}).IsVisible(true))
	assert.False(t, (&Entity{}).IsVisible(false))
	assert.False(t, (&Entity{Visible: &hidden}).IsVisible(true))
	assert.True(t, (&Entity{Visible: &shown}).IsVisible(false))
}

func TestEntity_IsNew(t *testing.T) {
	assert.True(t, (&Entity{}).IsNew())
	assert.False(t, (&Entity{ID: uuid.New()}).IsNew())
}
