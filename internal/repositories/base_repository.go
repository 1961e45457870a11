package repositories

import (
	"errors"

	"merithub/internal/database"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BaseRepository provides the shared database handle and logger.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository.
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{db: db, logger: logger}
}

// DB returns the database manager.
func (r *BaseRepository) DB() *database.Manager {
	return r.db
}

// Logger returns the repository logger.
func (r *BaseRepository) Logger() *zap.Logger {
	return r.logger
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. The award and acknowledgment paths rely on this to tell the
// expected duplicate-key idempotency signal apart from genuine faults.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// NewCollection wires all repositories against one database manager.
func NewCollection(db *database.Manager, logger *zap.Logger) *Collection {
	base := NewBaseRepository(db, logger)
	return &Collection{
		User:         NewUserRepository(base),
		Activity:     NewActivityRepository(base),
		Badge:        NewBadgeRepository(base),
		Milestone:    NewMilestoneRepository(base),
		Notification: NewNotificationRepository(base),
		DeviceToken:  NewDeviceTokenRepository(base),
	}
}
