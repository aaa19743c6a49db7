package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const sqliteSelectColumns = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at,
	       retry_count, last_error, dead_lettered_at, dead_letter_reason
	FROM outbox`

// SQLiteRepository stores outbox messages in the local SQLite database.
// Timestamps are fixed-width UTC text, see database.FormatTime.
type SQLiteRepository struct {
	conn database.Connection
}

// NewSQLiteRepository creates a repository over a SQLite connection.
func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type,
		                    routing_key, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(), msg.EventType,
		msg.RoutingKey, string(msg.Payload), metadata, database.FormatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, sqliteSelectColumns+`
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`, database.FormatTime(time.Now()), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.update(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`,
		database.FormatTime(time.Now()), id)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return r.update(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`, reason, database.FormatTime(nextRetryAt), id)
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?,
		    dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`, reason, database.FormatTime(time.Now()), reason, id)
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT COUNT(*) FROM outbox
		WHERE published_at IS NULL AND dead_lettered_at IS NULL`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.FormatTime(retentionCutoff(olderThanDays)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

func scanSQLiteMessage(row database.Row) (*Message, error) {
	var (
		msg                                   Message
		eventID, aggregateID, payload, create string
		metadata, lastError, deadReason       sql.NullString
		published, nextRetry, deadAt          sql.NullString
	)
	if err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType,
		&msg.RoutingKey, &payload, &metadata, &create, &published, &nextRetry,
		&msg.RetryCount, &lastError, &deadAt, &deadReason,
	); err != nil {
		return nil, err
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d event_id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d aggregate_id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = database.ParseTime(create); err != nil {
		return nil, fmt.Errorf("outbox %d created_at: %w", msg.ID, err)
	}
	if msg.PublishedAt, err = database.ParseNullTime(published); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = database.ParseNullTime(nextRetry); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = database.ParseNullTime(deadAt); err != nil {
		return nil, err
	}

	msg.Payload = []byte(payload)
	if metadata.Valid {
		msg.Metadata = []byte(metadata.String)
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}

// NewRepository picks the implementation matching the connection's driver.
func NewRepository(conn database.Connection) Repository {
	if conn.Driver() == database.DriverSQLite {
		return NewSQLiteRepository(conn)
	}
	return NewPostgresRepository(conn)
}
