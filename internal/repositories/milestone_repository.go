package repositories

import (
	"context"
	"fmt"
)

type milestoneRepository struct {
	*BaseRepository
}

// NewMilestoneRepository creates a new milestone acknowledgment repository.
func NewMilestoneRepository(base *BaseRepository) MilestoneRepository {
	return &milestoneRepository{BaseRepository: base}
}

func (r *milestoneRepository) InsertAck(ctx context.Context, userID int64, milestoneID string) (bool, error) {
	query := `
		INSERT INTO milestone_acks (user_id, milestone_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, milestone_id) DO NOTHING`

	result, err := r.DB().ExecContext(ctx, query, userID, milestoneID)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert milestone ack: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read ack result: %w", err)
	}
	return affected > 0, nil
}

func (r *milestoneRepository) GetAckedIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	query := `SELECT milestone_id FROM milestone_acks WHERE user_id = $1`

	rows, err := r.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone acks: %w", err)
	}
	defer rows.Close()

	acked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan milestone id: %w", err)
		}
		acked[id] = true
	}
	return acked, rows.Err()
}
