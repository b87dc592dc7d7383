package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrReorderPartial reports a swap whose second write failed but whose
	// first write was rolled back by the compensating update.
	ErrReorderPartial = errors.New("reorder partially applied and compensated")
	// ErrReorderInconsistent reports a swap whose second write failed and
	// whose compensation also failed, leaving the two rows inconsistent.
	ErrReorderInconsistent = errors.New("reorder left display order inconsistent")
)

// EntityRepo is the generic row-store access for every content category.
// The category config selects the backing table; all categories share one
// schema shape.
type EntityRepo interface {
	ListAll(ctx context.Context, cfg model.CategoryConfig) ([]model.Entity, error)
	Get(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) (*model.Entity, error)
	Insert(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error
	Update(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error
	Delete(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) error
	MaxDisplayOrder(ctx context.Context, cfg model.CategoryConfig) (int, error)
	SwapOrder(ctx context.Context, cfg model.CategoryConfig, a, b *model.Entity) error
}

type entityRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEntityRepo(db *gorm.DB, log *zap.Logger) EntityRepo {
	return &entityRepo{db: db, log: log}
}

func (r *entityRepo) table(ctx context.Context, cfg model.CategoryConfig) *gorm.DB {
	return r.db.WithContext(ctx).Table(cfg.Table)
}

func (r *entityRepo) ListAll(ctx context.Context, cfg model.CategoryConfig) ([]model.Entity, error) {
	var rows []model.Entity
	q := r.table(ctx, cfg)
	switch {
	case cfg.Orderable:
		q = q.Order("display_order ASC").Order("created_at ASC")
	case cfg.InsertFirst:
		q = q.Order("created_at DESC")
	default:
		q = q.Order("created_at ASC")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Category = cfg.Slug
	}
	return rows, nil
}

func (r *entityRepo) Get(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) (*model.Entity, error) {
	var e model.Entity
	if err := r.table(ctx, cfg).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	e.Category = cfg.Slug
	return &e, nil
}

func (r *entityRepo) Insert(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.table(ctx, cfg).Create(e).Error
}

// Update writes the whole row so cleared fields (removed images, unset
// price) persist as cleared. Last write wins across admin sessions.
func (r *entityRepo) Update(ctx context.Context, cfg model.CategoryConfig, e *model.Entity) error {
	res := r.table(ctx, cfg).
		Where("id = ?", e.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entityRepo) Delete(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID) error {
	res := r.table(ctx, cfg).Where("id = ?", id).Delete(&model.Entity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entityRepo) MaxDisplayOrder(ctx context.Context, cfg model.CategoryConfig) (int, error) {
	var max *int
	err := r.table(ctx, cfg).Select("MAX(display_order)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// SwapOrder exchanges the display_order of two rows as two dependent
// updates. The remote store offers no transaction across the admin API, so
// a failed second write is compensated by restoring the first row;
// compensation itself is best-effort.
func (r *entityRepo) SwapOrder(ctx context.Context, cfg model.CategoryConfig, a, b *model.Entity) error {
	origA, origB := a.DisplayOrder, b.DisplayOrder

	if err := r.setOrder(ctx, cfg, a.ID, origB); err != nil {
		return fmt.Errorf("reorder first write: %w", err)
	}

	if err := r.setOrder(ctx, cfg, b.ID, origA); err != nil {
		if compErr := r.setOrder(ctx, cfg, a.ID, origA); compErr != nil {
			r.log.Error("reorder compensation failed",
				zap.String("table", cfg.Table),
				zap.String("id", a.ID.String()),
				zap.Error(compErr))
			return fmt.Errorf("%w: %v", ErrReorderInconsistent, err)
		}
		return fmt.Errorf("%w: %v", ErrReorderPartial, err)
	}

	a.DisplayOrder, b.DisplayOrder = origB, origA
	return nil
}

func (r *entityRepo) setOrder(ctx context.Context, cfg model.CategoryConfig, id uuid.UUID, order int) error {
	res := r.table(ctx, cfg).Where("id = ?", id).Update("display_order", order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
