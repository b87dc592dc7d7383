package service

import (
	"github.com/calabriando/api/internal/modules/model"
	"gorm.io/datatypes"
)

// NormalizeEntity fills the gaps a partial row may carry: both locale
// records present with every configured translatable field, image list
// non-nil, visibility defaulted. Rows written by older admin versions may
// miss any of these.
func NormalizeEntity(cfg model.CategoryConfig, e *model.Entity) {
	tr := e.Translations.Data()
	if tr == nil {
		tr = make(model.Translations, 2)
	}
	for _, locale := range model.Locales() {
		rec := tr[locale]
		if len(cfg.TranslatableFields) > 0 {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string, len(cfg.TranslatableFields))
			}
			for _, f := range cfg.TranslatableFields {
				if _, ok := rec.Extra[f]; !ok {
					rec.Extra[f] = ""
				}
			}
		}
		tr[locale] = rec
	}
	e.Translations = datatypesJSON(tr)

	if e.Images == nil {
		e.Images = datatypes.JSONSlice[string]{}
	}
	if e.Visible == nil {
		v := cfg.DefaultVisible
		e.Visible = &v
	}
	e.Category = cfg.Slug
}

// ValidateEntity applies the category's required-field rules. A non-nil
// return is always a *ValidationError; no partial persistence happens while
// any entry exists.
func ValidateEntity(cfg model.CategoryConfig, e *model.Entity) error {
	fields := make(map[string]string)

	tr := e.Translations.Data()
	for _, locale := range model.Locales() {
		if tr[locale].Title == "" {
			fields["translations."+locale+".title"] = "title is required"
		}
	}

	if cfg.HasTaxonomy() {
		switch {
		case e.Subcategory == "":
			fields["subcategory"] = "category is required"
		case !cfg.AllowsSubcategory(e.Subcategory):
			fields["subcategory"] = "unknown category value"
		}
	} else if e.Subcategory != "" {
		fields["subcategory"] = "category not allowed here"
	}

	if cfg.RequiresImage && len(e.Images) == 0 {
		fields["images"] = "at least one image is required"
	}
	if len(e.Images) > cfg.MaxImages {
		fields["images"] = "too many images"
	}

	if e.Price != nil && *e.Price < 0 {
		fields["price"] = "price cannot be negative"
	}

	if cfg.Bookable {
		if e.MaxParticipants < 1 {
			fields["max_participants"] = "capacity must be at least 1"
		}
		if e.Price == nil {
			fields["price"] = "price is required"
		}
		slots := e.AvailableDates.Data()
		seen := make(map[string]bool, len(slots))
		for i, slot := range slots {
			if slot.Date == "" {
				fields["available_dates"] = "slot date is required"
				break
			}
			if seen[slot.Date] {
				fields["available_dates"] = "duplicate slot date " + slot.Date
				break
			}
			seen[slot.Date] = true
			if i > 0 && slots[i-1].Date > slot.Date {
				fields["available_dates"] = "slots must be sorted by date"
				break
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func datatypesJSON(tr model.Translations) datatypes.JSONType[model.Translations] {
	return datatypes.NewJSONType(tr)
}

func datatypesJSONSlots(slots []model.AvailabilitySlot) datatypes.JSONType[[]model.AvailabilitySlot] {
	return datatypes.NewJSONType(slots)
}
