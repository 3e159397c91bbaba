package storage

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "kettle", escapeLike("kettle"))
}

func TestQualified(t *testing.T) {
	assert.Equal(t, "p.id, p.name, p.slug", qualified("p", "id,\n\tname, slug"))
}

func TestPingRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ConnectionRefused", errors.New("dial tcp: connection refused"), true},
		{"TooManyConnections", &pgconn.PgError{Code: "53300"}, true},
		{"WrongPassword", &pgconn.PgError{Code: "28P01"}, false},
		{"UnknownDatabase", &pgconn.PgError{Code: pgInvalidCatalogName}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pingRetryable(tt.err))
		})
	}
}

func TestMapErr(t *testing.T) {
	t.Run("NoRows", func(t *testing.T) {
		err := mapErr("op", sql.ErrNoRows)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code: pgUniqueViolation, ConstraintName: "products_slug_key",
		}
		err := mapErr("op", pgErr)
		assert.ErrorIs(t, err, ErrConstraint)
		assert.Contains(t, err.Error(), "products_slug_key")
	})

	t.Run("Other", func(t *testing.T) {
		errOther := errors.New("connection reset")
		err := mapErr("op", errOther)
		assert.ErrorIs(t, err, errOther)
		assert.NotErrorIs(t, err, ErrConstraint)
	})
}
