// Package orders owns the order lifecycle: creation, status progression,
// cancellation and the notifications that follow each change.
package orders

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/database/models"
)

type Broadcaster interface {
	BroadcastOrder(order *models.Order)
}

// CatalogCache is told when order side effects change cached menu data.
type CatalogCache interface {
	InvalidateAll(ctx context.Context)
}

type Config struct {
	// StatusDelay is the base delay between simulated status changes.
	// Progression is disabled when it is zero or no scheduler is given.
	StatusDelay time.Duration
}

type Service struct {
	repo      *Repository
	hub       Broadcaster
	cache     CatalogCache
	simulator *Simulator
	log       zerolog.Logger
}

func NewService(repo *Repository, hub Broadcaster, cache CatalogCache, scheduler Scheduler, cfg Config, log zerolog.Logger) *Service {
	s := &Service{
		repo:  repo,
		hub:   hub,
		cache: cache,
		log:   log.With().Str("component", "orders").Logger(),
	}
	if scheduler != nil && cfg.StatusDelay > 0 {
		s.simulator = NewSimulator(scheduler, s, cfg.StatusDelay, log)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput, userID *int64) (*models.Order, error) {
	order, err := s.repo.CreateOrder(ctx, in, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int64("final_amount", order.FinalAmount).
		Int("items", len(order.Items)).
		Msg("order created")

	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	// Announce the new order before any progression can be broadcast.
	s.hub.BroadcastOrder(order)
	if s.simulator != nil {
		s.simulator.Start(order.ID)
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	order, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("order_id", id).Str("status", string(status)).Msg("order status updated")
	s.hub.BroadcastOrder(order)
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.CancelOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("order_id", id).Msg("order cancelled")
	s.hub.BroadcastOrder(order)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.repo.ListUserOrders(ctx, userID)
}

func (s *Service) StatusHistory(ctx context.Context, id int64) ([]models.OrderStatusLog, error) {
	return s.repo.GetStatusHistory(ctx, id)
}
