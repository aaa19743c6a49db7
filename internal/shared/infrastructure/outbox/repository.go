package outbox

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a status update targets no row.
var ErrMessageNotFound = errors.New("outbox message not found")

// Repository persists outbox messages. Save and SaveBatch join the
// transaction carried by ctx so events commit with their aggregate.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns pending messages whose retry time has passed,
	// oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// CountPending counts messages neither published nor dead-lettered.
	CountPending(ctx context.Context) (int64, error)

	// DeleteOld removes published messages older than the retention window.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}

func retentionCutoff(olderThanDays int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -olderThanDays)
}

func checkAffected(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
