package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
)

const postgresSelectColumns = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at,
	       retry_count, last_error, dead_lettered_at, dead_letter_reason
	FROM outbox`

// PostgresRepository stores outbox messages in PostgreSQL.
type PostgresRepository struct {
	conn database.Connection
}

// NewPostgresRepository creates a repository over a Postgres connection.
func NewPostgresRepository(conn database.Connection) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type,
		                    routing_key, payload, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		msg.EventID, msg.AggregateType, msg.AggregateID, msg.EventType,
		msg.RoutingKey, []byte(msg.Payload), nullableJSON(msg.Metadata), msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
	}
	return nil
}

func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, postgresSelectColumns+`
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []*Message
	for rows.Next() {
		var (
			msg      Message
			payload  []byte
			metadata []byte
		)
		if err := rows.Scan(
			&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType,
			&msg.RoutingKey, &payload, &metadata, &msg.CreatedAt, &msg.PublishedAt,
			&msg.NextRetryAt, &msg.RetryCount, &msg.LastError, &msg.DeadLetteredAt,
			&msg.DeadLetterReason,
		); err != nil {
			return nil, err
		}
		msg.Payload = payload
		msg.Metadata = metadata
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.update(ctx, `UPDATE outbox SET published_at = NOW() WHERE id = $1`, id)
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return r.update(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		WHERE id = $1`, id, reason, nextRetryAt)
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2,
		    dead_lettered_at = NOW(), dead_letter_reason = $2
		WHERE id = $1`, id, reason)
}

func (r *PostgresRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT COUNT(*) FROM outbox
		WHERE published_at IS NULL AND dead_lettered_at IS NULL`).Scan(&count)
	return count, err
}

func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`,
		retentionCutoff(olderThanDays))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
