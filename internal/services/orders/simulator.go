package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
)

// Scheduler runs task once after delay without blocking the caller.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler is a Scheduler backed by time.AfterFunc. Pending tasks are
// dropped by Stop.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[*time.Timer]struct{})}
}

func (s *TimerScheduler) Schedule(delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()

		task()
	})
	s.timers[timer] = struct{}{}
}

func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}

var simulatedSteps = []models.OrderStatus{
	models.OrderStatusPreparing,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
}

type statusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
}

// Simulator stands in for a kitchen and dispatch system by walking new
// orders through the delivery states on a fixed cadence.
type Simulator struct {
	scheduler Scheduler
	updater   statusUpdater
	baseDelay time.Duration
	timeout   time.Duration
	log       zerolog.Logger
}

func NewSimulator(scheduler Scheduler, updater statusUpdater, baseDelay time.Duration, log zerolog.Logger) *Simulator {
	return &Simulator{
		scheduler: scheduler,
		updater:   updater,
		baseDelay: baseDelay,
		timeout:   10 * time.Second,
		log:       log.With().Str("component", "simulator").Logger(),
	}
}

func (s *Simulator) Start(orderID int64) {
	s.log.Debug().Int64("order_id", orderID).Dur("base_delay", s.baseDelay).Msg("scheduling status progression")

	for i, status := range simulatedSteps {
		status := status
		s.scheduler.Schedule(s.baseDelay*time.Duration(i+1), func() {
			s.advance(orderID, status)
		})
	}
}

func (s *Simulator) advance(orderID int64, status models.OrderStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.updater.UpdateOrderStatus(ctx, orderID, status)
	switch {
	case err == nil:
		s.log.Info().Int64("order_id", orderID).Str("status", string(status)).Msg("order advanced")
	case errors.Is(err, apperror.ErrInvalidTransition):
		s.log.Debug().Int64("order_id", orderID).Str("status", string(status)).Err(err).Msg("skipping scheduled transition")
	default:
		s.log.Error().Int64("order_id", orderID).Str("status", string(status)).Err(err).Msg("scheduled transition failed")
	}
}
