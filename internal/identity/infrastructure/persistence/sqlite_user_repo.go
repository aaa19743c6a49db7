package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const sqliteUserColumns = `
	SELECT id, email, name, password_hash, version, created_at, updated_at
	FROM users`

// SQLiteUserRepository handles persistence for users in local mode. The
// email column is NOCASE so lookups ignore case.
type SQLiteUserRepository struct {
	conn database.Connection
}

func NewSQLiteUserRepository(conn database.Connection) *SQLiteUserRepository {
	return &SQLiteUserRepository{conn: conn}
}

func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, version, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			password_hash = excluded.password_hash,
			version = users.version + 1,
			updated_at = excluded.updated_at
		WHERE users.version = ?5
		RETURNING version
	`

	var stored int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		user.ID().String(),
		user.Email().String(),
		user.Name().String(),
		user.PasswordHash(),
		user.Version(),
		database.FormatTime(user.CreatedAt()),
		database.FormatTime(user.UpdatedAt()),
	).Scan(&stored)
	if err != nil {
		return saveError(err)
	}

	if stored != user.Version() {
		user.IncrementVersion()
	}
	return nil
}

func (r *SQLiteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scan(exec.QueryRow(ctx, sqliteUserColumns+` WHERE id = ?`, id.String()))
}

func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scan(exec.QueryRow(ctx, sqliteUserColumns+` WHERE email = ?`, email.String()))
}

func (r *SQLiteUserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	var count int
	exec := database.ExecutorFromContext(ctx, r.conn)
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email.String()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SQLiteUserRepository) scan(row database.Row) (*domain.User, error) {
	var (
		idStr, email, name, hash string
		version                  int
		createdStr, updatedStr   string
	)
	if err := row.Scan(&idStr, &email, &name, &hash, &version, &createdStr, &updatedStr); err != nil {
		return nil, findError(err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	createdAt, err := database.ParseTime(createdStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := database.ParseTime(updatedStr)
	if err != nil {
		return nil, err
	}
	return toDomain(id, email, name, hash, createdAt, updatedAt, version)
}
