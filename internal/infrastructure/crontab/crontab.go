package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/infrastructure/inference"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/platformerrors"
)

const (
	DefaultHealthInterval = 1 // in minutes
	CronJobTimeout        = 2 * time.Minute
)

// Crontab runs the periodic background jobs: inference health probes and
// trending ranking refresh.
type Crontab struct {
	ctab    *crontab.Crontab
	health  *inference.HealthMonitor
	gallery *gallery.Service
	cfg     *config.Config
}

func NewCrontab(
	cfg *config.Config,
	health *inference.HealthMonitor,
	gallery *gallery.Service,
) *Crontab {
	return &Crontab{
		ctab:    crontab.New(),
		health:  health,
		gallery: gallery,
		cfg:     cfg,
	}
}

// Run schedules the jobs and blocks until ctx is canceled.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()
	// execute once on server start
	c.checkInferenceHealth(ctx)

	interval := c.cfg.InferenceHealthInterval
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	if err := c.ctab.AddJob(fmt.Sprintf("*/%d * * * *", interval), func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.checkInferenceHealth(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add inference health job")
	}
	log.Info().Msgf("Inference health check scheduled: every %d minute(s)", interval)

	if c.cfg.TrendingCacheTTL > 0 {
		if err := c.ctab.AddJob("* * * * *", func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.refreshTrending(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add trending refresh job")
		}
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) checkInferenceHealth(ctx context.Context) {
	report := c.health.Check(ctx)
	log := logger.GetLogger()
	event := log.Debug()
	if (report.Primary.Configured && !report.Primary.Healthy) || (report.Fallback.Configured && !report.Fallback.Healthy) {
		event = log.Warn()
	}
	event.
		Bool("primary_healthy", report.Primary.Healthy).
		Bool("fallback_healthy", report.Fallback.Healthy).
		Msg("inference health checked")
}

func (c *Crontab) refreshTrending(ctx context.Context) {
	if err := c.gallery.RefreshTrending(ctx); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("Failed to refresh trending ranking")
	}
}
