package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/logger"
)

// sweepBatchSize caps how many subscribed users one sweep reconciles.
const sweepBatchSize = 1000

// sweepSyncTimeout bounds each per-user provider call during a sweep.
const sweepSyncTimeout = 30 * time.Second

// EntitlementSweeper periodically reconciles stored entitlements against
// the billing provider for users holding a subscription reference. It
// catches missed or out-of-order webhook deliveries.
type EntitlementSweeper struct {
	billingService billing.Service
	userRepo       user.Repository
	schedule       string
	logger         *logger.Logger
	cron           *cron.Cron
}

// NewEntitlementSweeper creates a new entitlement sweeper worker
func NewEntitlementSweeper(
	billingService billing.Service,
	userRepo user.Repository,
	schedule string,
	log *logger.Logger,
) *EntitlementSweeper {
	return &EntitlementSweeper{
		billingService: billingService,
		userRepo:       userRepo,
		schedule:       schedule,
		logger:         log,
	}
}

// Start schedules the sweep and blocks until the context is cancelled
func (s *EntitlementSweeper) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.With("schedule", s.schedule).Info("Starting entitlement sweeper worker")
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Entitlement sweeper worker stopped")
	return nil
}

// Sweep reconciles all users holding a subscription reference. Provider
// failures leave the affected user's entitlement untouched.
func (s *EntitlementSweeper) Sweep(ctx context.Context) {
	s.logger.Info("Starting entitlement sweep")

	users, err := s.userRepo.ListWithSubscription(ctx, sweepBatchSize)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list subscribed users for sweep")
		return
	}

	synced, failed := 0, 0
	for _, u := range users {
		select {
		case <-ctx.Done():
			s.logger.Warn("Entitlement sweep interrupted")
			return
		default:
		}

		syncCtx, cancel := context.WithTimeout(ctx, sweepSyncTimeout)
		result := s.billingService.SyncFromProvider(syncCtx, u.ID)
		cancel()

		if result.Success {
			synced++
		} else {
			failed++
			s.logger.WithFields(map[string]interface{}{
				"user_id": u.ID,
				"error":   result.Error,
			}).Warn("Entitlement sweep sync failed for user")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total":  len(users),
		"synced": synced,
		"failed": failed,
	}).Info("Completed entitlement sweep")
}
