package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCategoryUnknown = errors.New("unknown content category")
	ErrEntityNotFound  = errors.New("entity not found")

	// Editor errors
	ErrCrossGroupReorder = errors.New("cannot reorder across different groups")
	ErrNoNeighbor        = errors.New("no neighbor to swap with")
	ErrSlotDuplicate     = errors.New("availability slot already exists for that date")
	ErrSlotNotFound      = errors.New("availability slot not found")

	// Media errors
	ErrGalleryFull      = errors.New("image slots are full for this entity")
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// Booking errors
	ErrNotBookable        = errors.New("entity is not bookable")
	ErrDateUnavailable    = errors.New("chosen date is not available")
	ErrTooManyPeople      = errors.New("participant count exceeds capacity")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidPaymentFlow = errors.New("invalid payment state transition")

	// Gastronomy errors
	ErrDishNotFound = errors.New("dish not found")
)

// ValidationError carries field-keyed messages from the editor's required
// field checks. Save is blocked while any entry exists.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FirstField returns the lexically first failing field so the caller can
// surface which tab/section holds the error.
func (e *ValidationError) FirstField() string {
	first := ""
	for k := range e.Fields {
		if first == "" || k < first {
			first = k
		}
	}
	return first
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
