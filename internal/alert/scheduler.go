// Package alert runs the periodic warranty and maintenance checks.
// Alerts surface as structured log entries; delivery channels sit
// outside this service.
package alert

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/config"
	"github.com/rpattn/assettrack/internal/view"
)

// Scheduler manages the periodic alert job.
type Scheduler struct {
	cron   *cron.Cron
	views  *view.Builder
	cfg    config.AlertConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.AlertConfig, views *view.Builder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		views:  views,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the alert job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting alert scheduler", zap.String("schedule", s.cfg.Schedule))

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runChecks); err != nil {
		s.logger.Error("failed to schedule alert job", zap.Error(err))
		return
	}
	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping alert scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	expiring, err := s.views.GetExpiringWarranties(ctx, s.cfg.WarrantyWindowDays)
	if err != nil {
		s.logger.Error("warranty check failed", zap.Error(err))
	} else {
		for _, asset := range expiring {
			s.logger.Warn("warranty expiring",
				zap.String("asset_id", asset.Tag),
				zap.Timep("warranty_expiry", asset.WarrantyExpiry),
				zap.String("manufacturer", asset.Model.Manufacturer),
				zap.String("model_number", asset.Model.ModelNumber))
		}
		s.logger.Info("warranty check complete", zap.Int("expiring", len(expiring)))
	}

	upcoming, err := s.views.GetUpcomingMaintenance(ctx, s.cfg.MaintenanceWindowDays)
	if err != nil {
		s.logger.Error("maintenance check failed", zap.Error(err))
		return
	}
	for _, record := range upcoming {
		s.logger.Warn("maintenance due",
			zap.Int64("maintenance_record_id", record.ID),
			zap.Int64("asset_id", record.AssetID),
			zap.Time("scheduled_date", record.ScheduledDate),
			zap.String("description", record.Description))
	}
	s.logger.Info("maintenance check complete", zap.Int("due", len(upcoming)))
}
