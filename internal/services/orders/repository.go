package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
	"orderflow/internal/services/pricing"
)

type CreateOrderInput struct {
	CustomerName  string
	Address       string
	Phone         string
	Email         *string
	PromoCode     *string
	PaymentMethod models.PaymentMethod
	Notes         *string
	Items         []pricing.ItemRequest
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Items.MenuItem", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		})
}

// CreateOrder prices the request, applies and consumes the promo code,
// and writes the order, its lines and the menu counters in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, in CreateOrderInput, userID *int64) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperror.Domain("Order must have at least one item")
	}

	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(in.Items))
		quantities := make(map[int64]int64, len(in.Items))
		for _, item := range in.Items {
			if _, seen := quantities[item.MenuItemID]; !seen {
				ids = append(ids, item.MenuItemID)
			}
			quantities[item.MenuItemID] += int64(item.Quantity)
		}

		var menuItems []models.MenuItem
		if err := tx.Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
			return fmt.Errorf("failed to load menu items: %w", err)
		}
		catalog := make(map[int64]models.MenuItem, len(menuItems))
		for _, item := range menuItems {
			catalog[item.ID] = item
		}

		lines, total, err := pricing.PriceOrder(in.Items, catalog)
		if err != nil {
			return &apperror.DomainError{Message: err.Error()}
		}

		var discount int64
		var promoCode *string
		if in.PromoCode != nil && pricing.NormalizeCode(*in.PromoCode) != "" {
			code := pricing.NormalizeCode(*in.PromoCode)
			discount, err = redeemPromo(tx, code, total)
			if err != nil {
				return err
			}
			promoCode = &code
		}

		order = models.Order{
			UserID:         userID,
			CustomerName:   in.CustomerName,
			Address:        in.Address,
			Phone:          in.Phone,
			Email:          in.Email,
			Status:         models.OrderStatusReceived,
			TotalAmount:    total,
			DiscountAmount: discount,
			FinalAmount:    total - discount,
			PromoCode:      promoCode,
			PaymentMethod:  in.PaymentMethod,
			PaymentStatus:  models.PaymentStatusPending,
			Notes:          in.Notes,
			CanCancel:      CanCancel(models.OrderStatusReceived),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				Price:      line.UnitPrice,
			})
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		for _, id := range ids {
			if err := tx.Model(&models.MenuItem{}).
				Where("id = ?", id).
				UpdateColumn("order_count", gorm.Expr("order_count + ?", quantities[id])).Error; err != nil {
				return fmt.Errorf("failed to update order count for menu item %d: %w", id, err)
			}
		}

		return tx.Create(&models.OrderStatusLog{OrderID: order.ID, Status: order.Status}).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrder(ctx, order.ID)
}

// redeemPromo validates code against total and consumes one use. The
// increment is conditional so concurrent orders cannot exceed max_uses.
func redeemPromo(tx *gorm.DB, code string, total int64) (int64, error) {
	var promo models.PromoCode
	var found *models.PromoCode
	err := tx.Where("code = ?", code).First(&promo).Error
	switch {
	case err == nil:
		found = &promo
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("failed to load promo code: %w", err)
	}

	result := pricing.EvaluatePromo(found, total, time.Now())
	if !result.Valid {
		return 0, &apperror.DomainError{Message: result.Message}
	}

	res := tx.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", promo.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to redeem promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, &apperror.DomainError{Message: pricing.MsgPromoUsageLimit}
	}

	return *result.Discount, nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order")
		}
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}

// UpdateOrderStatus writes status only if the stored status may legally
// move to it. The check and the write are one statement, so a terminal
// order can never be reopened by a late writer.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", id, Predecessors(status)).
			Updates(map[string]interface{}{
				"status":     status,
				"can_cancel": CanCancel(status),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update order %d: %w", id, res.Error)
		}

		if res.RowsAffected == 0 {
			var current models.Order
			if err := tx.Select("id", "status").First(&current, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("Order")
				}
				return fmt.Errorf("failed to load order %d: %w", id, err)
			}
			return fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidTransition, current.Status, status)
		}

		return tx.Create(&models.OrderStatusLog{OrderID: id, Status: status}).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrder(ctx, id)
}

func (r *Repository) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Select("id", "status", "can_cancel").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order")
		}
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}

	if !order.CanCancel {
		return nil, apperror.ErrNotCancellable
	}

	cancelled, err := r.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled)
	if errors.Is(err, apperror.ErrInvalidTransition) {
		return nil, apperror.ErrNotCancellable
	}
	return cancelled, err
}

func (r *Repository) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := preloadItems(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *Repository) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

func (r *Repository) GetStatusHistory(ctx context.Context, id int64) ([]models.OrderStatusLog, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	if count == 0 {
		return nil, apperror.NotFound("Order")
	}

	history := []models.OrderStatusLog{}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("id").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load status history for order %d: %w", id, err)
	}
	return history, nil
}
