package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/erp/store/internal/domain/shared"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// DBError is a storage failure classified into the error taxonomy. It
// unwraps to both the taxonomy sentinel (Kind) and the driver error, so
// errors.Is(err, shared.ErrConstraintViolation) and errors.As(err, &pgErr)
// both work.
type DBError struct {
	Kind       *shared.DomainError
	Op         string
	Constraint string
	Err        error
}

// Error implements the error interface
func (e *DBError) Error() string {
	msg := e.Kind.Message
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the taxonomy sentinel and the driver error
func (e *DBError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgConnectionClass     = "08"
)

// MySQL server error numbers
const (
	myDuplicateEntry     = 1062
	myColumnCannotBeNull = 1048
	myNoDefaultForField  = 1364
	myRowIsReferenced    = 1451
	myNoReferencedRow    = 1452
	myRowIsReferenced2   = 1217
	myNoReferencedRow2   = 1216
	myCheckViolated      = 3819
)

// translate converts a GORM/driver error into the repository contract:
// shared.ErrNotFound for missing rows, *DBError for classified failures,
// and the original error (annotated with op) for anything else.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return err
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	kind, constraint := classify(err)
	if kind == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &DBError{Kind: kind, Op: op, Constraint: constraint, Err: err}
}

// ErrorKind names the taxonomy class of err, or returns "" when err is
// not a classified storage failure
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Kind.Code
	}
	kind, _ := classify(err)
	if kind == nil {
		return ""
	}
	return kind.Code
}

func classify(err error) (*shared.DomainError, string) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.ErrConstraintViolation, ""
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrReferentialIntegrityViolation, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code), pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code)), pqErr.Constraint
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myDuplicateEntry, myColumnCannotBeNull, myNoDefaultForField, myCheckViolated:
			return shared.ErrConstraintViolation, ""
		case myRowIsReferenced, myRowIsReferenced2, myNoReferencedRow, myNoReferencedRow2:
			return shared.ErrReferentialIntegrityViolation, ""
		}
		return nil, ""
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey,
			sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return shared.ErrConstraintViolation, ""
		case sqlite3.ErrConstraintForeignKey:
			return shared.ErrReferentialIntegrityViolation, ""
		}
		if liteErr.Code == sqlite3.ErrCantOpen {
			return shared.ErrConnection, ""
		}
		return nil, ""
	}

	if isConnectionError(err) {
		return shared.ErrConnection, ""
	}
	return nil, ""
}

func classifySQLState(code string) *shared.DomainError {
	switch code {
	case pgUniqueViolation, pgNotNullViolation, pgCheckViolation:
		return shared.ErrConstraintViolation
	case pgForeignKeyViolation:
		return shared.ErrReferentialIntegrityViolation
	}
	if len(code) == 5 && code[:2] == pgConnectionClass {
		return shared.ErrConnection
	}
	return nil
}

func isConnectionError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// connectionError wraps a failure to reach the engine
func connectionError(op string, err error) error {
	return &DBError{Kind: shared.ErrConnection, Op: op, Err: err}
}
