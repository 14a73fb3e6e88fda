package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/feedesk-backend/internal/money"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("record with this key already exists")
)

// isUniqueViolation reports a PostgreSQL unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateKey
	default:
		return err
	}
}

// NUMERIC columns are selected as ::text and parsed here so amounts never
// pass through float64.
func parseAmount(raw string) (money.Money, error) {
	return money.Parse(raw)
}
