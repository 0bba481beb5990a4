// Package promo manages promo codes. Redemption happens inside order
// creation; this package only reads and administers the codes.
package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
	"orderflow/internal/services/pricing"
)

type CreatePromoInput struct {
	Code          string              `json:"code" binding:"required,min=3,max=64"`
	DiscountType  models.DiscountType `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue int64               `json:"discountValue" binding:"required,min=1"`
	MinimumOrder  int64               `json:"minimumOrder" binding:"min=0"`
	MaxUses       *int64              `json:"maxUses,omitempty" binding:"omitempty,min=1"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		now: time.Now,
		log: log.With().Str("component", "promo").Logger(),
	}
}

// Validate reports whether code would apply to an order of orderTotal.
// Usage counters are left untouched.
func (s *Service) Validate(ctx context.Context, code string, orderTotal int64) (pricing.PromoResult, error) {
	normalized := pricing.NormalizeCode(code)
	if normalized == "" {
		return pricing.EvaluatePromo(nil, orderTotal, s.now()), nil
	}

	var promo models.PromoCode
	err := s.db.WithContext(ctx).Where("code = ?", normalized).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.EvaluatePromo(nil, orderTotal, s.now()), nil
	}
	if err != nil {
		return pricing.PromoResult{}, fmt.Errorf("failed to load promo code: %w", err)
	}

	return pricing.EvaluatePromo(&promo, orderTotal, s.now()), nil
}

func (s *Service) Create(ctx context.Context, in CreatePromoInput) (*models.PromoCode, error) {
	code := pricing.NormalizeCode(in.Code)
	if strings.ContainsAny(code, " \t") {
		return nil, &apperror.ValidationError{
			Message: "Validation Error",
			Fields:  []apperror.FieldError{{Field: "code", Message: "must not contain whitespace"}},
		}
	}
	if in.DiscountType == models.DiscountTypePercentage && in.DiscountValue > 100 {
		return nil, &apperror.ValidationError{
			Message: "Validation Error",
			Fields:  []apperror.FieldError{{Field: "discountValue", Message: "percentage must be between 1 and 100"}},
		}
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.PromoCode{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check promo code: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Domain("Promo code %s already exists", code)
	}

	promo := models.PromoCode{
		Code:          code,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinimumOrder:  in.MinimumOrder,
		MaxUses:       in.MaxUses,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(&promo).Error; err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	s.log.Info().Str("code", promo.Code).Str("type", string(promo.DiscountType)).Msg("promo code created")
	return &promo, nil
}

func (s *Service) List(ctx context.Context) ([]models.PromoCode, error) {
	promos := []models.PromoCode{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return promos, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) (*models.PromoCode, error) {
	res := s.db.WithContext(ctx).Model(&models.PromoCode{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to deactivate promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("Promo code")
	}

	var promo models.PromoCode
	if err := s.db.WithContext(ctx).First(&promo, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload promo code: %w", err)
	}

	s.log.Info().Str("code", promo.Code).Msg("promo code deactivated")
	return &promo, nil
}
