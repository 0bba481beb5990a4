// Package menu serves the catalog: filtered listing, lookups and admin
// maintenance, with an optional Redis read-through cache.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
)

type ListFilter struct {
	Category *string `form:"category"`
	Search   *string `form:"search"`
	MinPrice *int64  `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice *int64  `form:"maxPrice" binding:"omitempty,min=0"`
}

func (f ListFilter) empty() bool {
	return blank(f.Category) && blank(f.Search) && f.MinPrice == nil && f.MaxPrice == nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

type CreateMenuItemInput struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"required"`
	Price       int64  `json:"price" binding:"required,min=1"`
	ImageURL    string `json:"imageUrl" binding:"required,url"`
	Category    string `json:"category" binding:"required,max=64"`
	IsAvailable *bool  `json:"isAvailable,omitempty"`
}

type UpdateMenuItemInput struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=128"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl,omitempty" binding:"omitempty,url"`
	Category    *string `json:"category,omitempty" binding:"omitempty,max=64"`
	IsAvailable *bool   `json:"isAvailable,omitempty"`
}

type Service struct {
	db    *gorm.DB
	cache *Cache
	log   zerolog.Logger
}

func NewService(db *gorm.DB, cache *Cache, log zerolog.Logger) *Service {
	return &Service{
		db:    db,
		cache: cache,
		log:   log.With().Str("component", "menu").Logger(),
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error) {
	cacheable := filter.empty()
	if cacheable {
		if items, ok := s.cache.GetList(ctx); ok {
			return items, nil
		}
	}

	query := s.db.WithContext(ctx).Model(&models.MenuItem{})
	if !blank(filter.Category) {
		query = query.Where("category = ?", strings.TrimSpace(*filter.Category))
	}
	if !blank(filter.Search) {
		term := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", term, term)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	items := []models.MenuItem{}
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	if cacheable {
		s.cache.SetList(ctx, items)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	if item, ok := s.cache.GetItem(ctx, id); ok {
		return item, nil
	}

	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Menu item")
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	s.cache.SetItem(ctx, &item)
	return &item, nil
}

func (s *Service) Create(ctx context.Context, in CreateMenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    strings.TrimSpace(in.Category),
		IsAvailable: true,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Int64("menu_item_id", item.ID).Str("name", item.Name).Msg("menu item created")
	return &item, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateMenuItemInput) (*models.MenuItem, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.IsAvailable != nil {
		updates["is_available"] = *in.IsAvailable
	}

	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Menu item")
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update menu item: %w", err)
		}
		if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
			return nil, fmt.Errorf("failed to reload menu item: %w", err)
		}
	}

	s.cache.Invalidate(ctx, id)
	s.log.Info().Int64("menu_item_id", id).Int("fields", len(updates)).Msg("menu item updated")
	return &item, nil
}

// Delete hides the item from the catalog. Past orders keep resolving it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete menu item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Menu item")
	}

	s.cache.Invalidate(ctx, id)
	s.log.Info().Int64("menu_item_id", id).Msg("menu item deleted")
	return nil
}

// Categories lists the distinct categories of the visible catalog.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	if err := s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
