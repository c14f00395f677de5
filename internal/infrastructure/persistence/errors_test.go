package persistence

import (
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"github.com/erp/store/internal/domain/shared"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind *shared.DomainError
	}{
		{"postgres unique", &pgconn.PgError{Code: "23505"}, shared.ErrConstraintViolation},
		{"postgres not null", &pgconn.PgError{Code: "23502"}, shared.ErrConstraintViolation},
		{"postgres check", &pgconn.PgError{Code: "23514"}, shared.ErrConstraintViolation},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, shared.ErrReferentialIntegrityViolation},
		{"postgres connection class", &pgconn.PgError{Code: "08006"}, shared.ErrConnection},
		{"lib/pq unique", &pq.Error{Code: "23505"}, shared.ErrConstraintViolation},
		{"lib/pq foreign key", &pq.Error{Code: "23503"}, shared.ErrReferentialIntegrityViolation},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, shared.ErrConstraintViolation},
		{"mysql column cannot be null", &mysql.MySQLError{Number: 1048}, shared.ErrConstraintViolation},
		{"mysql row is referenced", &mysql.MySQLError{Number: 1451}, shared.ErrReferentialIntegrityViolation},
		{"mysql no referenced row", &mysql.MySQLError{Number: 1452}, shared.ErrReferentialIntegrityViolation},
		{"mysql invalid connection", mysql.ErrInvalidConn, shared.ErrConnection},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, shared.ErrConstraintViolation},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, shared.ErrConstraintViolation},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, shared.ErrReferentialIntegrityViolation},
		{"sqlite cannot open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, shared.ErrConnection},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, shared.ErrConstraintViolation},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, shared.ErrReferentialIntegrityViolation},
		{"bad connection", driver.ErrBadConn, shared.ErrConnection},
		{"dial failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, shared.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate("op", tt.err)

			var dbErr *DBError
			require.ErrorAs(t, err, &dbErr)
			assert.Same(t, tt.kind, dbErr.Kind)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.kind.Code, ErrorKind(err))
			assert.Equal(t, tt.kind.Code, ErrorKind(tt.err))
		})
	}
}

func TestTranslate_Passthrough(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translate("op", nil))
	})

	t.Run("record not found becomes ErrNotFound", func(t *testing.T) {
		assert.Same(t, shared.ErrNotFound, translate("op", gorm.ErrRecordNotFound))
	})

	t.Run("domain errors are returned unchanged", func(t *testing.T) {
		err := shared.NewDomainError("INVALID_STATUS", "bad")
		assert.Same(t, err, translate("op", err))
	})

	t.Run("classified errors are not wrapped twice", func(t *testing.T) {
		first := translate("insert", &pgconn.PgError{Code: "23505"})
		assert.Same(t, first, translate("outer", first))
	})

	t.Run("unclassified errors keep their cause", func(t *testing.T) {
		cause := errors.New("syntax error")
		err := translate("find thing", cause)
		assert.ErrorIs(t, err, cause)
		assert.EqualError(t, err, "find thing: syntax error")
		assert.Empty(t, ErrorKind(err))
	})

	t.Run("unknown sqlstate is unclassified", func(t *testing.T) {
		assert.Empty(t, ErrorKind(&pgconn.PgError{Code: "42601"}))
	})

	t.Run("no error has no kind", func(t *testing.T) {
		assert.Empty(t, ErrorKind(nil))
	})
}

func TestDBError(t *testing.T) {
	t.Run("constraint name is taken from postgres", func(t *testing.T) {
		err := translate("create customer", &pgconn.PgError{
			Code:           "23505",
			Message:        "duplicate key value violates unique constraint",
			ConstraintName: "idx_customers_customer_id",
		})

		var dbErr *DBError
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, "idx_customers_customer_id", dbErr.Constraint)
		assert.Equal(t, "create customer", dbErr.Op)
		assert.Contains(t, err.Error(), "create customer: Constraint violation (idx_customers_customer_id)")

		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23505", pgErr.Code)
	})

	t.Run("constraint name is taken from lib/pq", func(t *testing.T) {
		err := translate("create payment", &pq.Error{Code: "23505", Constraint: "idx_payments_payment_reference"})

		var dbErr *DBError
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, "idx_payments_payment_reference", dbErr.Constraint)
	})

	t.Run("error without cause", func(t *testing.T) {
		err := &DBError{Kind: shared.ErrReferentialIntegrityViolation, Op: "delete customer"}
		assert.Equal(t, "delete customer: Referential integrity violation", err.Error())
		assert.ErrorIs(t, err, shared.ErrReferentialIntegrityViolation)
		assert.NotErrorIs(t, err, shared.ErrConstraintViolation)
	})

	t.Run("connection error helper", func(t *testing.T) {
		cause := errors.New("refused")
		err := connectionError("ping database", cause)
		assert.ErrorIs(t, err, shared.ErrConnection)
		assert.ErrorIs(t, err, cause)
	})
}
