package repo

import (
	"context"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GastronomyRepo interface {
	ListAll(ctx context.Context) ([]model.GastronomyCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*model.GastronomyCategory, error)
	Insert(ctx context.Context, g *model.GastronomyCategory) error
	Update(ctx context.Context, g *model.GastronomyCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gastronomyRepo struct {
	db *gorm.DB
}

func NewGastronomyRepo(db *gorm.DB) GastronomyRepo {
	return &gastronomyRepo{db: db}
}

func (r *gastronomyRepo) ListAll(ctx context.Context) ([]model.GastronomyCategory, error) {
	var rows []model.GastronomyCategory
	err := r.db.WithContext(ctx).
		Order("display_order ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gastronomyRepo) Get(ctx context.Context, id uuid.UUID) (*model.GastronomyCategory, error) {
	var g model.GastronomyCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gastronomyRepo) Insert(ctx context.Context, g *model.GastronomyCategory) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *gastronomyRepo) Update(ctx context.Context, g *model.GastronomyCategory) error {
	res := r.db.WithContext(ctx).
		Model(&model.GastronomyCategory{}).
		Where("id = ?", g.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(g)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gastronomyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GastronomyCategory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
