// Package pricing computes order totals and evaluates promo codes. Nothing
// here touches storage; callers pass in the catalog and promo rows.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/database/models"
)

const (
	MsgPromoApplied    = "Promo code applied successfully"
	MsgPromoInvalid    = "Invalid promo code"
	MsgPromoInactive   = "Promo code is inactive"
	MsgPromoExpired    = "Promo code has expired"
	MsgPromoUsageLimit = "Promo code usage limit reached"
)

type ItemRequest struct {
	MenuItemID int64 `json:"menuItemId" binding:"required"`
	Quantity   int32 `json:"quantity" binding:"required,min=1"`
}

// Line is a priced order line with the unit price captured at evaluation time.
type Line struct {
	MenuItemID int64
	Quantity   int32
	UnitPrice  int64
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

type ItemNotFoundError struct {
	ID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Menu item %d not found", e.ID)
}

// PriceOrder resolves every request against catalog and sums the order total.
// A single missing item fails the whole order.
func PriceOrder(requests []ItemRequest, catalog map[int64]models.MenuItem) ([]Line, int64, error) {
	lines := make([]Line, 0, len(requests))
	var total int64

	for _, req := range requests {
		item, ok := catalog[req.MenuItemID]
		if !ok {
			return nil, 0, &ItemNotFoundError{ID: req.MenuItemID}
		}
		if req.Quantity < 1 {
			return nil, 0, fmt.Errorf("quantity for menu item %d must be at least 1", req.MenuItemID)
		}

		line := Line{
			MenuItemID: item.ID,
			Quantity:   req.Quantity,
			UnitPrice:  item.Price,
		}
		lines = append(lines, line)
		total += line.Total()
	}

	return lines, total, nil
}

type PromoResult struct {
	Valid     bool              `json:"valid"`
	Discount  *int64            `json:"discount,omitempty"`
	PromoCode *models.PromoCode `json:"promoCode,omitempty"`
	Message   string            `json:"message"`
}

func invalid(message string) PromoResult {
	return PromoResult{Valid: false, Message: message}
}

// NormalizeCode canonicalizes a user supplied promo code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluatePromo runs the eligibility checks in order and stops at the first
// failure. promo is nil when no code matched the lookup.
func EvaluatePromo(promo *models.PromoCode, orderTotal int64, now time.Time) PromoResult {
	if promo == nil {
		return invalid(MsgPromoInvalid)
	}
	if !promo.IsActive {
		return invalid(MsgPromoInactive)
	}
	if promo.ExpiresAt != nil && !promo.ExpiresAt.After(now) {
		return invalid(MsgPromoExpired)
	}
	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		return invalid(MsgPromoUsageLimit)
	}
	if orderTotal < promo.MinimumOrder {
		return invalid(fmt.Sprintf("Minimum order amount is $%s", FormatAmount(promo.MinimumOrder)))
	}

	discount := Discount(promo, orderTotal)
	return PromoResult{
		Valid:     true,
		Discount:  &discount,
		PromoCode: promo,
		Message:   MsgPromoApplied,
	}
}

// Discount computes the discount for an eligible promo. The result never
// exceeds orderTotal.
func Discount(promo *models.PromoCode, orderTotal int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discount = decimal.NewFromInt(orderTotal).
			Mul(decimal.NewFromInt(promo.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case models.DiscountTypeFixed:
		discount = promo.DiscountValue
	}

	if discount > orderTotal {
		discount = orderTotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// FormatAmount renders minor units as a two decimal major unit string.
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
