// Package analytics aggregates the admin dashboard figures.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orderflow/internal/database/models"
)

const (
	popularItemsLimit = 5
	recentOrdersLimit = 10
)

type Dashboard struct {
	TotalOrders       int64             `json:"totalOrders"`
	TotalRevenue      int64             `json:"totalRevenue"`
	AverageOrderValue int64             `json:"averageOrderValue"`
	OrdersByStatus    map[string]int64  `json:"ordersByStatus"`
	PopularItems      []models.MenuItem `json:"popularItems"`
	RecentOrders      []models.Order    `json:"recentOrders"`
}

type statusCount struct {
	Status string
	Count  int64
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Dashboard reports order volume and revenue. Cancelled orders count toward
// volume but never toward revenue.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{
		OrdersByStatus: map[string]int64{
			string(models.OrderStatusReceived):       0,
			string(models.OrderStatusPreparing):      0,
			string(models.OrderStatusOutForDelivery): 0,
			string(models.OrderStatusDelivered):      0,
			string(models.OrderStatusCancelled):      0,
		},
		PopularItems: []models.MenuItem{},
		RecentOrders: []models.Order{},
	}

	var counts []statusCount
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	var billable int64
	for _, c := range counts {
		d.OrdersByStatus[c.Status] = c.Count
		d.TotalOrders += c.Count
		if c.Status != string(models.OrderStatusCancelled) {
			billable += c.Count
		}
	}

	if err := db.Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&d.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	if billable > 0 {
		d.AverageOrderValue = decimal.NewFromInt(d.TotalRevenue).
			Div(decimal.NewFromInt(billable)).
			Round(0).
			IntPart()
	}

	if err := db.Where("order_count > 0").
		Order("order_count DESC, id ASC").
		Limit(popularItemsLimit).
		Find(&d.PopularItems).Error; err != nil {
		return nil, fmt.Errorf("failed to load popular items: %w", err)
	}

	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).
		Order("created_at DESC, id DESC").
		Limit(recentOrdersLimit).
		Find(&d.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return d, nil
}
