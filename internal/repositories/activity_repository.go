package repositories

import (
	"context"
	"fmt"
)

type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a repository over the marketplace
// activity sources (sales, listings, reviews).
func NewActivityRepository(base *BaseRepository) ActivityRepository {
	return &activityRepository{BaseRepository: base}
}

func (r *activityRepository) CountCompletedSales(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM sales WHERE seller_id = $1 AND status = 'completed'`

	var count int
	if err := r.DB().QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed sales: %w", err)
	}
	return count, nil
}

func (r *activityRepository) CountListings(ctx context.Context, userID int64) (int, error) {
	// Sold listings still count toward listing activity; only removed ones don't.
	query := `SELECT COUNT(*) FROM listings WHERE user_id = $1 AND status IN ('active', 'sold')`

	var count int
	if err := r.DB().QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *activityRepository) ReviewSummary(ctx context.Context, userID int64) (int, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE seller_id = $1 AND status = 'published'`

	var count int
	var avg float64
	if err := r.DB().QueryRowContext(ctx, query, userID).Scan(&count, &avg); err != nil {
		return 0, 0, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return count, avg, nil
}
