package persistence

import (
	"context"
	"time"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const postgresUserColumns = `
	SELECT id, email, name, password_hash, version, created_at, updated_at
	FROM users`

// PostgresUserRepository handles persistence for users using PostgreSQL.
type PostgresUserRepository struct {
	conn database.Connection
}

func NewPostgresUserRepository(conn database.Connection) *PostgresUserRepository {
	return &PostgresUserRepository{conn: conn}
}

// Save upserts the user with an optimistic version check.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			version = users.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE users.version = $5
		RETURNING version
	`

	var stored int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		user.ID(),
		user.Email().String(),
		user.Name().String(),
		user.PasswordHash(),
		user.Version(),
		user.CreatedAt(),
		user.UpdatedAt(),
	).Scan(&stored)
	if err != nil {
		return saveError(err)
	}

	if stored != user.Version() {
		user.IncrementVersion()
	}
	return nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scan(exec.QueryRow(ctx, postgresUserColumns+` WHERE id = $1`, id))
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scan(exec.QueryRow(ctx, postgresUserColumns+` WHERE LOWER(email) = $1`, email.String()))
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	var exists bool
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = $1)`, email.String()).Scan(&exists)
	return exists, err
}

func (r *PostgresUserRepository) scan(row database.Row) (*domain.User, error) {
	var (
		id                   uuid.UUID
		email, name, hash    string
		version              int
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &email, &name, &hash, &version, &createdAt, &updatedAt); err != nil {
		return nil, findError(err)
	}
	return toDomain(id, email, name, hash, createdAt, updatedAt, version)
}
