package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	wrap := func(code string) error { return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code}) }

	assert.True(t, isUniqueViolation(wrap("23505")))
	assert.True(t, isForeignKeyViolation(wrap("23503")))
	assert.True(t, isRetryable(wrap("40001")))
	assert.True(t, isRetryable(wrap("40P01")))

	assert.False(t, isRetryable(wrap("23505")))
	assert.False(t, isRetryable(errors.New("conexión cerrada")))
	assert.False(t, isForeignKeyViolation(errors.New("23503")))
}

func TestWithIPv4Host(t *testing.T) {
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/db?sslmode=disable",
		withIPv4Host("postgres://u:p@127.0.0.1/db?sslmode=disable"))
	assert.Equal(t, "postgres://u:p@10.0.0.5:6543/db",
		withIPv4Host("postgres://u:p@10.0.0.5:6543/db"))
	// IPv6 literal: se deja intacto.
	assert.Equal(t, "postgres://u:p@[::1]:5432/db", withIPv4Host("postgres://u:p@[::1]:5432/db"))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"warehouses", "products", "product_stocks", "movements", "transfers", "purchases", "listings"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
