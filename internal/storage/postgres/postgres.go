// internal/storage/postgres/postgres.go
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// isUniqueViolation reports whether err is a 23505 on the named
// constraint. Uniqueness races (duplicate members, duplicate pending
// invitations, token clashes) are decided by the database, not by the
// application; this is how the loser finds out.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
