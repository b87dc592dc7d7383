package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking entity types. Only bookable categories may be referenced.
const (
	BookingTypeTour      = "tour"
	BookingTypeAdventure = "adventure"
	BookingTypeEvent     = "event"
)

// Payment methods and statuses. Status starts pending and is advanced by
// the payment processors through the webhook endpoints.
const (
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusCanceled = "canceled"
)

type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	// Human-readable reference printed on the confirmation and carried
	// through payment and mail flows.
	Reference string `gorm:"type:text;uniqueIndex;not null" json:"reference"`

	EntityID   uuid.UUID `gorm:"type:uuid;not null;index" json:"entity_id"`
	EntityType string    `gorm:"type:text;not null" json:"entity_type"`

	Name  string `gorm:"type:text;not null" json:"name"`
	Email string `gorm:"type:text;not null" json:"email"`
	Phone string `gorm:"type:text" json:"phone"`

	Date      string `gorm:"type:text;not null" json:"date"` // YYYY-MM-DD
	StartTime string `gorm:"type:text" json:"start_time"`
	EndTime   string `gorm:"type:text" json:"end_time"`

	Participants int     `gorm:"not null" json:"participants"`
	UnitPrice    float64 `gorm:"type:numeric;not null" json:"unit_price"`
	TotalPrice   float64 `gorm:"type:numeric;not null" json:"total_price"`

	PaymentMethod  string `gorm:"type:text;not null" json:"payment_method"`
	PaymentStatus  string `gorm:"type:text;not null;default:pending;index" json:"payment_status"`
	PaymentOrderID string `gorm:"type:text;index" json:"payment_order_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
