package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"merithub/internal/models"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(base *BaseRepository) UserRepository {
	return &userRepository{BaseRepository: base}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, display_name, avatar_url,
		       id_verified, email_verified, phone_verified, is_active, created_at
		FROM users
		WHERE id = $1`

	var user models.User
	err := r.DB().QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.IDVerified,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetTenureCandidates(ctx context.Context, cutoff time.Time, badgeID string, limit int) ([]int64, error) {
	query := `
		SELECT u.id
		FROM users u
		WHERE u.is_active = TRUE
		  AND u.created_at <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM user_badges ub
			WHERE ub.user_id = u.id AND ub.badge_id = $2
		  )
		ORDER BY u.created_at ASC
		LIMIT $3`

	rows, err := r.DB().QueryContext(ctx, query, cutoff, badgeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenure candidates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	r.Logger().Debug("Tenure sweep candidates selected",
		zap.Int("count", len(ids)),
		zap.String("badge_id", badgeID),
	)
	return ids, nil
}

func (r *userRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.username, u.display_name,
		       COUNT(ub.id) AS badge_count,
		       COALESCE(SUM(bd.points_value), 0) AS total_points
		FROM users u
		JOIN user_badges ub ON ub.user_id = u.id
		JOIN badge_definitions bd ON bd.id = ub.badge_id
		WHERE u.is_active = TRUE
		GROUP BY u.id, u.username, u.display_name
		ORDER BY total_points DESC, badge_count DESC, u.id ASC
		LIMIT $1`

	rows, err := r.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.BadgeCount, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
