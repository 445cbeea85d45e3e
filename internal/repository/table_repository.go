package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// TableRepository 餐桌仓储
type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id uint) (*model.Table, error)
	List(ctx context.Context) ([]*model.Table, error)
	Save(ctx context.Context, table *model.Table) error
	Delete(ctx context.Context, id uint) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository { return &tableRepository{db: db} }

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepository) GetByID(ctx context.Context, id uint) (*model.Table, error) {
	var t model.Table
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) List(ctx context.Context) ([]*model.Table, error) {
	var tables []*model.Table
	if err := r.db.WithContext(ctx).Order("number").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) Save(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Save(table).Error
}

func (r *tableRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Table{}, id).Error
}
