package persistence

import (
	"context"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/google/uuid"
)

const sqliteDeadlineColumns = `
	SELECT id, user_id, title, due_date, estimated_effort, importance_level,
	       version, created_at, updated_at
	FROM deadlines`

// SQLiteDeadlineRepository implements deadline.Repository for local mode.
// Ids are stored as text, due dates as YYYY-MM-DD.
type SQLiteDeadlineRepository struct {
	conn database.Connection
}

func NewSQLiteDeadlineRepository(conn database.Connection) *SQLiteDeadlineRepository {
	return &SQLiteDeadlineRepository{conn: conn}
}

func (r *SQLiteDeadlineRepository) Save(ctx context.Context, d *deadline.Deadline) error {
	query := `
		INSERT INTO deadlines (
			id, user_id, title, due_date, estimated_effort, importance_level,
			version, created_at, updated_at
		) VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			due_date = excluded.due_date,
			estimated_effort = excluded.estimated_effort,
			importance_level = excluded.importance_level,
			version = deadlines.version + 1,
			updated_at = excluded.updated_at
		WHERE deadlines.version = ?7 AND deadlines.user_id = ?2
		RETURNING version
	`

	var stored int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		d.ID().String(),
		d.UserID().String(),
		d.Title(),
		d.DueDate().Format(time.DateOnly),
		d.EstimatedEffort(),
		d.Importance().String(),
		d.Version(),
		database.FormatTime(d.CreatedAt()),
		database.FormatTime(d.UpdatedAt()),
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

func (r *SQLiteDeadlineRepository) FindByID(ctx context.Context, id uuid.UUID) (*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	d, err := scanSQLiteDeadline(exec.QueryRow(ctx, sqliteDeadlineColumns+` WHERE id = ?`, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, deadline.ErrDeadlineNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *SQLiteDeadlineRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, sqliteDeadlineColumns+`
		WHERE user_id = ?
		ORDER BY due_date, title, created_at`, userID.String())
	if err != nil {
		return nil, err
	}
	return collectDeadlines(rows, scanSQLiteDeadline)
}

func (r *SQLiteDeadlineRepository) FindDueBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*deadline.Deadline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, sqliteDeadlineColumns+`
		WHERE user_id = ? AND due_date BETWEEN ? AND ?
		ORDER BY due_date, created_at`,
		userID.String(), start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return collectDeadlines(rows, scanSQLiteDeadline)
}

func (r *SQLiteDeadlineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM deadlines WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanSQLiteDeadline(row database.Row) (*deadline.Deadline, error) {
	var (
		id, userID, title, due, importance string
		createdAt, updatedAt               string
		effort, version                    int
	)
	if err := row.Scan(&id, &userID, &title, &due, &effort, &importance, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("deadline id %q: %w", id, err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("deadline %s user_id: %w", id, err)
	}
	dueDate, err := time.Parse(time.DateOnly, due)
	if err != nil {
		return nil, fmt.Errorf("deadline %s due_date: %w", id, err)
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("deadline %s created_at: %w", id, err)
	}
	updated, err := database.ParseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("deadline %s updated_at: %w", id, err)
	}

	return deadline.Rehydrate(parsedID, owner, title, dueDate, effort,
		value_objects.NormalizeImportance(importance), created, updated, version), nil
}
