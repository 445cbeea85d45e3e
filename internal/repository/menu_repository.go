package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// MenuRepository 菜单仓储
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	GetByID(ctx context.Context, id uint) (*model.MenuItem, error)
	// GetByIDs 下单时批量解析单价用；在事务内解析时传 tx
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*model.MenuItem, error)
	List(ctx context.Context, category string) ([]*model.MenuItem, error)
	Save(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository { return &menuRepository{db: db} }

func (r *menuRepository) pick(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepository) GetByID(ctx context.Context, id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*model.MenuItem, error) {
	var items []*model.MenuItem
	if err := r.pick(tx).WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	res := make(map[uint]*model.MenuItem, len(items))
	for _, it := range items {
		res[it.ID] = it
	}
	return res, nil
}

func (r *menuRepository) List(ctx context.Context, category string) ([]*model.MenuItem, error) {
	q := r.db.WithContext(ctx).Model(&model.MenuItem{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var items []*model.MenuItem
	if err := q.Order("category, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) Save(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *menuRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.MenuItem{}, id).Error
}
