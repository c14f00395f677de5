package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a context carrying tx. Repositories called with the
// returned context run their statements on tx.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn resolves the handle a repository statement runs on: the
// transaction in ctx when there is one, the pool otherwise.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// TransactionScope runs units of work inside a single transaction.
type TransactionScope struct {
	db *gorm.DB
}

// NewTransactionScope creates a new TransactionScope.
func NewTransactionScope(db *gorm.DB) *TransactionScope {
	return &TransactionScope{db: db}
}

// Execute runs fn within a database transaction stored in the context
// passed to fn. The transaction commits when fn returns nil and rolls back
// when it returns an error or panics. When ctx already carries a
// transaction, fn runs inside a savepoint of it, so a failing inner scope
// undoes only its own writes.
func (s *TransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	run := func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	}
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx).Transaction(run)
	}
	return s.db.WithContext(ctx).Transaction(run)
}
