package services

import (
	"context"
	"fmt"

	"merithub/internal/catalog"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

type catalogService struct {
	cat    *catalog.Catalog
	badges repositories.BadgeRepository
	logger *zap.Logger
}

// NewCatalogService creates the catalog seeding service.
func NewCatalogService(cat *catalog.Catalog, badges repositories.BadgeRepository, logger *zap.Logger) CatalogService {
	return &catalogService{cat: cat, badges: badges, logger: logger}
}

// EnsureInitialized writes only missing definitions. A stored row whose
// in-code definition has since changed is left alone: admins edit
// description, points, and is_active out of band, and a deploy must not
// claw those edits back.
func (s *catalogService) EnsureInitialized(ctx context.Context) error {
	var seeded int
	for _, def := range s.cat.Definitions() {
		d := def
		inserted, err := s.badges.EnsureDefinition(ctx, &d)
		if err != nil {
			return fmt.Errorf("catalog init: %w", err)
		}
		if inserted {
			seeded++
			s.logger.Info("Badge definition seeded",
				zap.String("badge_id", d.ID),
				zap.String("criteria_key", d.CriteriaKey),
			)
		}
	}

	s.logger.Info("Badge catalog initialized",
		zap.Int("total", s.cat.Size()),
		zap.Int("seeded", seeded),
	)
	return nil
}
