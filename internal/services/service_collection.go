// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"

	"merithub/internal/cache"
	"merithub/internal/catalog"
	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/events"
	"merithub/internal/push"
	"merithub/internal/realtime"
	"merithub/internal/repositories"
	"merithub/internal/utils"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their dependencies wired.
// One collection is constructed at process start and passed by handle
// to every caller; nothing here is global.
type ServiceCollection struct {
	// Core services
	Catalog      CatalogService
	Stats        StatsService
	Award        AwardService
	Milestone    MilestoneService
	Profile      ProfileService
	Notification NotificationService
	Sweep        SweepService

	// Infrastructure
	Repositories *repositories.Collection
	Cache        cache.Cache
	EventBus     events.EventBus
	Hub          *realtime.Hub
	Providers    []push.Provider
	Logger       *zap.Logger
	Config       *config.Config
	DBManager    *database.Manager
}

// NewServiceCollection wires the full service graph.
func NewServiceCollection(db *database.Manager, cfg *config.Config, logger *zap.Logger) (*ServiceCollection, error) {
	cat, err := catalog.Load()
	if err != nil {
		// A catalog typo must fail startup, not silently never qualify.
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	cacheInstance, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	bus := events.NewEventBus(logger)
	hub := realtime.NewHub(logger)
	repos := repositories.NewCollection(db, logger)
	providers := push.BuildProviders(&cfg.Push, logger)
	icons := utils.NewIconResolver(&cfg.Cloudinary, logger)

	stats := NewStatsService(repos.User, repos.Activity, logger)
	notification := NewNotificationService(repos.Notification, repos.DeviceToken, providers, hub, logger)
	award := NewAwardService(repos.User, repos.Badge, stats, notification, cat, bus, logger)

	sc := &ServiceCollection{
		Catalog:      NewCatalogService(cat, repos.Badge, logger),
		Stats:        stats,
		Award:        award,
		Milestone:    NewMilestoneService(repos.Badge, repos.Milestone, logger),
		Profile:      NewProfileService(repos.User, repos.Badge, cacheInstance, icons, logger),
		Notification: notification,
		Sweep:        NewSweepService(repos.User, award, bus, logger),

		Repositories: repos,
		Cache:        cacheInstance,
		EventBus:     bus,
		Hub:          hub,
		Providers:    providers,
		Logger:       logger,
		Config:       cfg,
		DBManager:    db,
	}

	enabled := 0
	for _, p := range providers {
		if p.Enabled() {
			enabled++
		}
	}
	logger.Info("Service collection initialized",
		zap.Int("catalog_size", cat.Size()),
		zap.Int("push_providers_configured", len(providers)),
		zap.Int("push_providers_enabled", enabled),
	)
	return sc, nil
}

// Health checks the collection's infrastructure dependencies.
func (sc *ServiceCollection) Health(ctx context.Context) map[string]string {
	status := make(map[string]string)

	dbHealth := sc.DBManager.Health(ctx)
	status["database"] = dbHealth.Status

	if err := sc.Cache.Health(ctx); err != nil {
		status["cache"] = "unhealthy"
	} else {
		status["cache"] = "healthy"
	}

	status["realtime"] = fmt.Sprintf("healthy (%d connected users)", sc.Hub.ConnectedUsers())
	return status
}

// Shutdown releases the collection's resources in dependency order.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.EventBus.Close()
	if err := sc.Cache.Close(); err != nil {
		sc.Logger.Warn("Cache shutdown failed", zap.Error(err))
	}
	return nil
}
