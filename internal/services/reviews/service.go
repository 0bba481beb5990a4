// Package reviews records customer ratings and keeps the per item rating
// aggregates on the menu in step with them.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
)

type CreateReviewInput struct {
	MenuItemID int64   `json:"menuItemId" binding:"required"`
	OrderID    *int64  `json:"orderId,omitempty"`
	Rating     int32   `json:"rating" binding:"required,min=1,max=5"`
	Comment    *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

type CatalogCache interface {
	Invalidate(ctx context.Context, ids ...int64)
}

type Service struct {
	db    *gorm.DB
	cache CatalogCache
	log   zerolog.Logger
}

func NewService(db *gorm.DB, cache CatalogCache, log zerolog.Logger) *Service {
	return &Service{
		db:    db,
		cache: cache,
		log:   log.With().Str("component", "reviews").Logger(),
	}
}

type ratingAggregate struct {
	Count int64
	Sum   int64
}

// AverageRating is the mean of sum over count rounded to two places.
func AverageRating(sum, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
}

// Create stores the review and recomputes the item's average rating and
// review count in the same transaction.
func (s *Service) Create(ctx context.Context, in CreateReviewInput, userID *int64) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, &apperror.ValidationError{
			Message: "Validation Error",
			Fields:  []apperror.FieldError{{Field: "rating", Message: "must be between 1 and 5"}},
		}
	}

	review := models.Review{
		MenuItemID: in.MenuItemID,
		UserID:     userID,
		OrderID:    in.OrderID,
		Rating:     in.Rating,
	}
	if in.Comment != nil && strings.TrimSpace(*in.Comment) != "" {
		comment := strings.TrimSpace(*in.Comment)
		review.Comment = &comment
	}

	var average decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The item row lock serializes reviews of one item so each aggregate
		// sees every earlier insert.
		var item models.MenuItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&item, in.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Menu item")
			}
			return fmt.Errorf("failed to load menu item: %w", err)
		}

		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		var agg ratingAggregate
		if err := tx.Model(&models.Review{}).
			Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
			Where("menu_item_id = ?", in.MenuItemID).
			Scan(&agg).Error; err != nil {
			return fmt.Errorf("failed to aggregate ratings: %w", err)
		}

		average = AverageRating(agg.Sum, agg.Count)
		return tx.Model(&models.MenuItem{}).
			Where("id = ?", in.MenuItemID).
			UpdateColumns(map[string]interface{}{
				"average_rating": average,
				"total_reviews":  agg.Count,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, in.MenuItemID)
	}

	s.log.Info().
		Int64("menu_item_id", in.MenuItemID).
		Int32("rating", in.Rating).
		Str("average", average.StringFixed(2)).
		Msg("review created")
	return &review, nil
}

func (s *Service) ListByMenuItem(ctx context.Context, menuItemID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	if err := s.db.WithContext(ctx).
		Where("menu_item_id = ?", menuItemID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
