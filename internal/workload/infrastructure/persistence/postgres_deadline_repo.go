package persistence

import (
	"context"
	"time"

	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/google/uuid"
)

const postgresDeadlineColumns = `
	SELECT id, user_id, title, due_date, estimated_effort, importance_level,
	       version, created_at, updated_at
	FROM deadlines`

// PostgresDeadlineRepository implements deadline.Repository on PostgreSQL.
type PostgresDeadlineRepository struct {
	conn database.Connection
}

func NewPostgresDeadlineRepository(conn database.Connection) *PostgresDeadlineRepository {
	return &PostgresDeadlineRepository{conn: conn}
}

// Save upserts the deadline. An update only applies when the stored
// version still matches, otherwise ErrConcurrentModification is returned.
func (r *PostgresDeadlineRepository) Save(ctx context.Context, d *deadline.Deadline) error {
	query := `
		INSERT INTO deadlines (
			id, user_id, title, due_date, estimated_effort, importance_level,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			due_date = EXCLUDED.due_date,
			estimated_effort = EXCLUDED.estimated_effort,
			importance_level = EXCLUDED.importance_level,
			version = deadlines.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE deadlines.version = $7 AND deadlines.user_id = $2
		RETURNING version
	`

	var stored int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		d.ID(),
		d.UserID(),
		d.Title(),
		d.DueDate(),
		d.EstimatedEffort(),
		d.Importance().String(),
		d.Version(),
		d.CreatedAt(),
		d.UpdatedAt(),
	).Scan(&stored)
	if err != nil {
		if database.IsNoRows(err) {
			return sharedDomain.ErrConcurrentModification
		}
		return err
	}

	if stored != d.Version() {
		d.IncrementVersion()
	}
	return nil
}

func (r *PostgresDeadlineRepository) FindByID(ctx context.Context, id uuid.UUID) (*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	d, err := scanPostgresDeadline(exec.QueryRow(ctx, postgresDeadlineColumns+` WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, deadline.ErrDeadlineNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *PostgresDeadlineRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, postgresDeadlineColumns+`
		WHERE user_id = $1
		ORDER BY due_date, title, created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectDeadlines(rows, scanPostgresDeadline)
}

func (r *PostgresDeadlineRepository) FindDueBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, postgresDeadlineColumns+`
		WHERE user_id = $1 AND due_date BETWEEN $2 AND $3
		ORDER BY due_date, created_at`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collectDeadlines(rows, scanPostgresDeadline)
}

func (r *PostgresDeadlineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM deadlines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanPostgresDeadline(row database.Row) (*deadline.Deadline, error) {
	var (
		id, userID           uuid.UUID
		title, importance    string
		due                  time.Time
		effort, version      int
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &userID, &title, &due, &effort, &importance, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return deadline.Rehydrate(id, userID, title, due, effort,
		value_objects.NormalizeImportance(importance), createdAt, updatedAt, version), nil
}
