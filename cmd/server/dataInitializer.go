package main

import (
	"context"

	"github.com/rs/zerolog"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

type DataInitializer struct {
	userService    *user.Service
	galleryService *gallery.Service
	catalog        *config.PlanCatalog
	config         *config.Config
	logger         zerolog.Logger
}

// Install prepares state the server expects before it accepts traffic.
func (d *DataInitializer) Install(ctx context.Context) error {
	d.logCatalog()

	if err := d.ensureSovereignUser(ctx); err != nil {
		return err
	}

	// Warm the trending ranking so the first gallery request does not pay for it.
	if err := d.galleryService.RefreshTrending(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("initial trending refresh failed")
	}
	return nil
}

// ensureSovereignUser provisions the configured sovereign account and its
// SOVEREIGN subscription, so it exists before its first sign-in.
func (d *DataInitializer) ensureSovereignUser(ctx context.Context) error {
	if d.config.SovereignUserID == "" {
		return nil
	}
	u, err := d.userService.EnsureUser(ctx, user.Identity{ID: d.config.SovereignUserID})
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to provision sovereign user")
	}
	d.logger.Info().Str("user_id", u.PublicID).Msg("sovereign user ready")
	return nil
}

func (d *DataInitializer) logCatalog() {
	for _, name := range d.catalog.PlanNames() {
		plan, _ := d.catalog.Plan(name)
		d.logger.Info().
			Str("plan", name).
			Bool("purchasable", plan.PriceID != "").
			Int("monthly_messages", plan.MonthlyMessages).
			Strs("allowed_models", plan.AllowedModels).
			Msg("plan configured")
	}
}
