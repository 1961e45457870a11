package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"merithub/internal/models"
)

type notificationRepository struct {
	*BaseRepository
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(base *BaseRepository) NotificationRepository {
	return &notificationRepository{BaseRepository: base}
}

func (r *notificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.DB().QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, payload,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB().QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var payload []byte
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &payload, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to decode notification data: %w", err)
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID int64, notificationID string) error {
	result, err := r.DB().ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read mark result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.DB().ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreferences, error) {
	query := `
		SELECT user_id, badge_push, milestone_push, updated_at
		FROM notification_preferences
		WHERE user_id = $1`

	var prefs models.NotificationPreferences
	err := r.DB().QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID, &prefs.BadgePush, &prefs.MilestonePush, &prefs.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	return &prefs, nil
}

func (r *notificationRepository) UpsertPreferences(ctx context.Context, prefs *models.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, badge_push, milestone_push, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			badge_push = EXCLUDED.badge_push,
			milestone_push = EXCLUDED.milestone_push,
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.DB().ExecContext(ctx, query, prefs.UserID, prefs.BadgePush, prefs.MilestonePush)
	if err != nil {
		return fmt.Errorf("failed to upsert notification preferences: %w", err)
	}
	return nil
}
