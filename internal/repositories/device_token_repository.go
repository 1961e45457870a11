package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type deviceTokenRepository struct {
	*BaseRepository
}

// NewDeviceTokenRepository creates a new device token repository.
func NewDeviceTokenRepository(base *BaseRepository) DeviceTokenRepository {
	return &deviceTokenRepository{BaseRepository: base}
}

func (r *deviceTokenRepository) Register(ctx context.Context, userID int64, family, token string) error {
	// A token moving between accounts (shared device, reinstalled app)
	// re-binds to the new owner and reactivates.
	query := `
		INSERT INTO device_tokens (user_id, family, token, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			family = EXCLUDED.family,
			active = TRUE`

	_, err := r.DB().ExecContext(ctx, query, userID, family, token)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (r *deviceTokenRepository) GetTokens(ctx context.Context, userID int64) (map[string][]string, error) {
	query := `SELECT family, token FROM device_tokens WHERE user_id = $1 AND active = TRUE`

	rows, err := r.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	byFamily := make(map[string][]string)
	for rows.Next() {
		var family, token string
		if err := rows.Scan(&family, &token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		byFamily[family] = append(byFamily[family], token)
	}
	return byFamily, rows.Err()
}

func (r *deviceTokenRepository) Invalidate(ctx context.Context, token string) error {
	_, err := r.DB().ExecContext(ctx,
		`UPDATE device_tokens SET active = FALSE WHERE token = $1`, token,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate device token: %w", err)
	}
	r.Logger().Info("Device token invalidated", zap.String("token_suffix", tokenSuffix(token)))
	return nil
}

func (r *deviceTokenRepository) Remove(ctx context.Context, userID int64, token string) error {
	_, err := r.DB().ExecContext(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`, userID, token,
	)
	if err != nil {
		return fmt.Errorf("failed to remove device token: %w", err)
	}
	return nil
}

// tokenSuffix keeps full tokens out of the logs.
func tokenSuffix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return "..." + token[len(token)-8:]
}
