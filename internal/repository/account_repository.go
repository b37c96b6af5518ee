package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `id, customer_id, account_number, account_type, balance, opening_balance, interest_rate, status, created_at, updated_at`

func (r *accountRepository) Create(account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		account.ID,
		account.CustomerID,
		account.AccountNumber,
		account.Type,
		account.Balance.String(),
		account.OpeningBalance.String(),
		account.InterestRate.String(),
		account.Status,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate account number", "account_number", account.AccountNumber)
				return errors.ErrDuplicateAccount
			}
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Account references missing customer", "customer_id", account.CustomerID)
				return errors.NewAppError(errors.EntityNotFound, "customer not found")
			}
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created", "account_id", account.ID, "account_number", account.AccountNumber)
	return nil
}

func (r *accountRepository) Get(id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(query, id), id)
}

func (r *accountRepository) GetForUpdate(id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanAccount(r.db.QueryRow(query, id), id)
}

func (r *accountRepository) scanAccount(row *sql.Row, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	var balanceStr, openingStr, rateStr string

	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.AccountNumber,
		&account.Type,
		&balanceStr,
		&openingStr,
		&rateStr,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to get account").WithDetails(err.Error())
	}

	if err := parseAccountDecimals(&account, balanceStr, openingStr, rateStr); err != nil {
		r.logger.Error("Failed to parse account decimals", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to parse account decimals").WithDetails(err.Error())
	}

	return &account, nil
}

func parseAccountDecimals(account *domain.Account, balanceStr, openingStr, rateStr string) error {
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return err
	}
	opening, err := decimal.NewFromString(openingStr)
	if err != nil {
		return err
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return err
	}

	account.Balance = balance
	account.OpeningBalance = opening
	account.InterestRate = rate
	return nil
}

func (r *accountRepository) Exists(id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check account existence", "account_id", id, "error", err)
		return false, errors.NewAppError(errors.StorageFailure, "failed to check account existence").WithDetails(err.Error())
	}
	return exists, nil
}

func (r *accountRepository) List() ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to list accounts").WithDetails(err.Error())
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var account domain.Account
		var balanceStr, openingStr, rateStr string

		err := rows.Scan(
			&account.ID,
			&account.CustomerID,
			&account.AccountNumber,
			&account.Type,
			&balanceStr,
			&openingStr,
			&rateStr,
			&account.Status,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageFailure, "failed to scan account").WithDetails(err.Error())
		}

		if err := parseAccountDecimals(&account, balanceStr, openingStr, rateStr); err != nil {
			return nil, errors.NewAppError(errors.StorageFailure, "failed to parse account decimals").WithDetails(err.Error())
		}

		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageFailure, "failed to iterate accounts").WithDetails(err.Error())
	}

	return accounts, nil
}

// Update overwrites every mutable field of the account row.
func (r *accountRepository) Update(account *domain.Account) error {
	query := `
		UPDATE accounts
		SET customer_id = $1, account_number = $2, account_type = $3, balance = $4,
		    interest_rate = $5, status = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(
		query,
		account.CustomerID,
		account.AccountNumber,
		account.Type,
		account.Balance.String(),
		account.InterestRate.String(),
		account.Status,
		time.Now(),
		account.ID,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.ErrDuplicateAccount
		}
		r.logger.Error("Failed to update account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to update account").WithDetails(err.Error())
	}

	return r.requireRow(result, account.ID)
}

func (r *accountRepository) UpdateBalance(id uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, balance.String(), time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_id", id, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to update account balance").WithDetails(err.Error())
	}

	if err := r.requireRow(result, id); err != nil {
		return err
	}

	r.logger.Info("Account balance updated", "account_id", id, "new_balance", balance)
	return nil
}

func (r *accountRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete account", "account_id", id, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to delete account").WithDetails(err.Error())
	}

	return r.requireRow(result, id)
}

func (r *accountRepository) requireRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageFailure, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("Account not found", "account_id", id)
		return errors.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count accounts").WithDetails(err.Error())
	}
	return count, nil
}

func (r *accountRepository) CountByStatus(status domain.AccountStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count accounts by status").WithDetails(err.Error())
	}
	return count, nil
}

func (r *accountRepository) TotalActiveBalance() (decimal.Decimal, error) {
	var totalStr string
	err := r.db.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE status = 'ACTIVE'`).Scan(&totalStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.StorageFailure, "failed to sum balances").WithDetails(err.Error())
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.StorageFailure, "failed to parse total balance").WithDetails(err.Error())
	}
	return total, nil
}
