package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrTableNotFound    = errors.New("table not found")
)

// CatalogService 菜单、餐桌与外送配置的简单数据维护。
// 订单核心只在下单时读一次这里的价格快照。
type CatalogService struct {
	menu     repository.MenuRepository
	tables   repository.TableRepository
	settings repository.SettingsRepository
}

func NewCatalogService(menu repository.MenuRepository, tables repository.TableRepository, settings repository.SettingsRepository) *CatalogService {
	return &CatalogService{menu: menu, tables: tables, settings: settings}
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	return s.menu.Create(ctx, item)
}

func (s *CatalogService) GetMenuItem(ctx context.Context, id uint) (*model.MenuItem, error) {
	item, err := s.menu.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) ListMenu(ctx context.Context, category string) ([]*model.MenuItem, error) {
	return s.menu.List(ctx, category)
}

func (s *CatalogService) SaveMenuItem(ctx context.Context, item *model.MenuItem) error {
	if _, err := s.GetMenuItem(ctx, item.ID); err != nil {
		return err
	}
	return s.menu.Save(ctx, item)
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id uint) error {
	if _, err := s.GetMenuItem(ctx, id); err != nil {
		return err
	}
	return s.menu.Delete(ctx, id)
}

func (s *CatalogService) CreateTable(ctx context.Context, table *model.Table) error {
	return s.tables.Create(ctx, table)
}

func (s *CatalogService) ListTables(ctx context.Context) ([]*model.Table, error) {
	return s.tables.List(ctx)
}

func (s *CatalogService) SaveTable(ctx context.Context, table *model.Table) error {
	if _, err := s.tables.GetByID(ctx, table.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	return s.tables.Save(ctx, table)
}

func (s *CatalogService) DeleteTable(ctx context.Context, id uint) error {
	if _, err := s.tables.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	return s.tables.Delete(ctx, id)
}

func (s *CatalogService) GetDeliverySettings(ctx context.Context) (*model.DeliverySettings, error) {
	return s.settings.GetDelivery(ctx)
}

func (s *CatalogService) SaveDeliverySettings(ctx context.Context, cfg *model.DeliverySettings) error {
	return s.settings.SaveDelivery(ctx, cfg)
}
