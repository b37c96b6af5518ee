package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = `id, account_id, transaction_type, amount, status, transaction_date, description, destination_account_id, created_at`

func (r *transactionRepository) Create(tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()

	var destination interface{}
	if tx.DestinationAccountID != nil {
		destination = *tx.DestinationAccountID
	}

	_, err := r.db.Exec(
		query,
		tx.ID,
		tx.AccountID,
		tx.Type,
		tx.Amount.String(),
		tx.Status,
		tx.TransactionDate,
		tx.Description,
		destination,
		now,
	)

	if err != nil {
		r.logger.Error("Failed to create transaction",
			"account_id", tx.AccountID,
			"transaction_type", tx.Type,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to create transaction").WithDetails(err.Error())
	}

	tx.CreatedAt = now
	r.logger.Info("Transaction created", "transaction_id", tx.ID, "status", tx.Status)
	return nil
}

func (r *transactionRepository) Get(id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	row := r.db.QueryRow(query, id)
	tx, err := scanTransactionRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewAppError(errors.EntityNotFound, "transaction not found")
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to get transaction").WithDetails(err.Error())
	}
	return tx, nil
}

func (r *transactionRepository) List() ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY transaction_date DESC`
	return r.queryTransactions(query)
}

func (r *transactionRepository) ListForAccount(accountID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 OR destination_account_id = $1
		ORDER BY transaction_date ASC, created_at ASC
	`
	return r.queryTransactions(query, accountID)
}

func (r *transactionRepository) queryTransactions(query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query transactions", "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to query transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageFailure, "failed to scan transaction").WithDetails(err.Error())
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageFailure, "failed to iterate transactions").WithDetails(err.Error())
	}

	return transactions, nil
}

func scanTransactionRow(scan func(...interface{}) error) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr string
	var destination sql.NullString

	err := scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Type,
		&amountStr,
		&tx.Status,
		&tx.TransactionDate,
		&tx.Description,
		&destination,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	tx.Amount = amount

	if destination.Valid {
		destID, err := uuid.Parse(destination.String)
		if err != nil {
			return nil, err
		}
		tx.DestinationAccountID = &destID
	}

	return &tx, nil
}

func (r *transactionRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete transaction", "transaction_id", id, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to delete transaction").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageFailure, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		return errors.NewAppError(errors.EntityNotFound, "transaction not found")
	}

	r.logger.Info("Transaction deleted", "transaction_id", id)
	return nil
}

func (r *transactionRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count transactions").WithDetails(err.Error())
	}
	return count, nil
}

func (r *transactionRepository) CountAfter(t time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE transaction_date > $1`, t).Scan(&count)
	if err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count transactions by date").WithDetails(err.Error())
	}
	return count, nil
}
