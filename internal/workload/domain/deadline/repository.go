package deadline

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for deadline persistence.
type Repository interface {
	Save(ctx context.Context, d *Deadline) error
	FindByID(ctx context.Context, id uuid.UUID) (*Deadline, error)
	// FindByUserID returns every deadline of the user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Deadline, error)
	// FindDueBetween returns the user's deadlines due in [start, end], both
	// dates inclusive.
	FindDueBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*Deadline, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
