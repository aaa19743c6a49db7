// Package persistence stores deadlines in PostgreSQL or, in local mode, SQLite.
package persistence

import (
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
)

// NewDeadlineRepository picks the implementation for the connection's driver.
func NewDeadlineRepository(conn database.Connection) deadline.Repository {
	if conn.Driver() == database.DriverSQLite {
		return NewSQLiteDeadlineRepository(conn)
	}
	return NewPostgresDeadlineRepository(conn)
}

func collectDeadlines(rows database.Rows, scan func(database.Row) (*deadline.Deadline, error)) ([]*deadline.Deadline, error) {
	defer func() { _ = rows.Close() }()

	deadlines := make([]*deadline.Deadline, 0)
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		deadlines = append(deadlines, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deadlines, nil
}

func requireAffected(result database.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return deadline.ErrDeadlineNotFound
	}
	return nil
}
