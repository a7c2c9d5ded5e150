package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/linguabridge/learning-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err means the requested record does not exist,
// regardless of which storage layer produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// ProgressRepository persists per-learner unit progress documents. One
// document covers one (user, unit) pair and carries the lock/completion
// state of every subtopic in the unit.
type ProgressRepository interface {
	// Get returns the progress document for the user and unit, or
	// ErrNotFound when the user has no document for that unit yet.
	Get(ctx context.Context, userID, unitID string) (*models.UnitProgress, error)

	// Put creates or fully replaces the progress document. Writes are
	// last-write-wins per (user, unit).
	Put(ctx context.Context, progress *models.UnitProgress) error

	// GetByUser returns every unit progress document the user has,
	// ordered by unit ID.
	GetByUser(ctx context.Context, userID string) ([]*models.UnitProgress, error)

	// Delete removes all progress documents for the user.
	Delete(ctx context.Context, userID string) error
}
