package repository

import (
	"database/sql"
	"log/slog"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

// Store is the PostgreSQL-backed implementation of domain.Store. A Store built
// from *sql.DB runs each repository call on the pool; the store handed to a
// WithTx closure runs everything on a single transaction.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Customers() domain.CustomerRepository {
	return NewCustomerRepository(s.executor, s.logger)
}

func (s *Store) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

func (s *Store) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}

// WithTx executes fn within a database transaction. Nesting is not supported:
// a tx-scoped store cannot begin another transaction.
func (s *Store) WithTx(fn func(domain.Store) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.NewAppError(errors.StorageFailure, "nested transactions are not supported")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewAppError(errors.StorageFailure, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
