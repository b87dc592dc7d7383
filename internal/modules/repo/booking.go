package repo

import (
	"context"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepo interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	GetByPaymentOrder(ctx context.Context, orderID string) (*model.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string, orderID string) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]model.Booking, error)
}

type bookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) BookingRepo {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *bookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) GetByPaymentOrder(ctx context.Context, orderID string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).Where("payment_order_id = ?", orderID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string, orderID string) error {
	updates := map[string]any{"payment_status": status}
	if orderID != "" {
		updates["payment_order_id"] = orderID
	}
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepo) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]model.Booking, error) {
	var rows []model.Booking
	err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
