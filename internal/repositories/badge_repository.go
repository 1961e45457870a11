package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"merithub/internal/models"

	"go.uber.org/zap"
)

type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(base *BaseRepository) BadgeRepository {
	return &badgeRepository{BaseRepository: base}
}

func (r *badgeRepository) EnsureDefinition(ctx context.Context, def *models.BadgeDefinition) (bool, error) {
	// DO NOTHING on conflict keeps admin-edited rows untouched across deploys.
	query := `
		INSERT INTO badge_definitions
			(id, name, description, icon, color, category, criteria_key,
			 display_priority, points_value, auto_award, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.DB().ExecContext(ctx, query,
		def.ID, def.Name, def.Description, def.Icon, def.Color, def.Category,
		def.CriteriaKey, def.DisplayPriority, def.PointsValue, def.AutoAward, def.IsActive,
	)
	if err != nil {
		return false, fmt.Errorf("failed to ensure badge definition %s: %w", def.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read ensure result for %s: %w", def.ID, err)
	}
	return affected > 0, nil
}

func (r *badgeRepository) GetActiveDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	query := `
		SELECT id, name, description, icon, color, category, criteria_key,
		       display_priority, points_value, auto_award, is_active, created_at
		FROM badge_definitions
		WHERE is_active = TRUE AND auto_award = TRUE
		ORDER BY display_priority ASC`

	rows, err := r.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.BadgeDefinition
	for rows.Next() {
		var def models.BadgeDefinition
		if err := rows.Scan(
			&def.ID, &def.Name, &def.Description, &def.Icon, &def.Color,
			&def.Category, &def.CriteriaKey, &def.DisplayPriority,
			&def.PointsValue, &def.AutoAward, &def.IsActive, &def.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan badge definition: %w", err)
		}
		defs = append(defs, &def)
	}
	return defs, rows.Err()
}

func (r *badgeRepository) GetUserBadgeIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	query := `SELECT badge_id FROM user_badges WHERE user_id = $1`

	rows, err := r.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user badge ids: %w", err)
	}
	defer rows.Close()

	held := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge id: %w", err)
		}
		held[id] = true
	}
	return held, rows.Err()
}

func (r *badgeRepository) InsertUserBadge(ctx context.Context, badge *models.UserBadge) (bool, error) {
	// Insert-if-absent is the only write primitive the award path needs:
	// the unique constraint resolves concurrent triggers, and RETURNING
	// tells us whether this call won.
	query := `
		INSERT INTO user_badges (user_id, badge_id, awarded_by, reason, auto_awarded)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, badge_id) DO NOTHING
		RETURNING id, awarded_at`

	err := r.DB().QueryRowContext(ctx, query,
		badge.UserID, badge.BadgeID, badge.AwardedBy, badge.Reason, badge.AutoAwarded,
	).Scan(&badge.ID, &badge.AwardedAt)
	if err == sql.ErrNoRows {
		// Row already exists: the expected duplicate signal, not a fault.
		r.Logger().Debug("Badge already held, insert skipped",
			zap.Int64("user_id", badge.UserID),
			zap.String("badge_id", badge.BadgeID),
		)
		return false, nil
	}
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert user badge: %w", err)
	}
	return true, nil
}

func (r *badgeRepository) GetEarnedBadges(ctx context.Context, userID int64) ([]*models.EarnedBadge, error) {
	query := `
		SELECT ub.badge_id, bd.name, bd.description, bd.icon, bd.color,
		       bd.category, bd.points_value, ub.awarded_at
		FROM user_badges ub
		JOIN badge_definitions bd ON bd.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC`

	rows, err := r.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earned badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.EarnedBadge
	for rows.Next() {
		var b models.EarnedBadge
		if err := rows.Scan(
			&b.BadgeID, &b.Name, &b.Description, &b.Icon, &b.Color,
			&b.Category, &b.PointsValue, &b.AwardedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		badges = append(badges, &b)
	}
	return badges, rows.Err()
}

func (r *badgeRepository) CountUserBadges(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_badges WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user badges: %w", err)
	}
	return count, nil
}
