package service

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

// TransactionService is the ledger engine: it validates proposed transactions,
// applies their balance effects atomically, and can rebuild account balances
// by replaying transaction history.
type TransactionService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewTransactionService(store domain.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

type CreateTransactionRequest struct {
	AccountID            uuid.UUID
	Type                 domain.TransactionType
	Amount               decimal.Decimal
	Description          string
	DestinationAccountID *uuid.UUID
	TransactionDate      *time.Time
}

// Create validates the request and applies its balance effect. Validation and
// both balance writes run inside one database transaction with the affected
// account rows locked, so either every write commits or none does. A storage
// failure mid-apply rolls back and leaves a FAILED record with no balance
// effect; validation failures leave no record at all.
func (s *TransactionService) Create(req *CreateTransactionRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transaction",
		"account_id", req.AccountID,
		"transaction_type", req.Type,
		"amount", req.Amount)

	if err := s.validate(req); err != nil {
		s.logger.Warn("Transaction rejected", "account_id", req.AccountID, "error", err)
		return nil, err
	}

	transactionDate := time.Now()
	if req.TransactionDate != nil {
		transactionDate = *req.TransactionDate
	}

	transaction := &domain.Transaction{
		ID:                   uuid.New(),
		AccountID:            req.AccountID,
		Type:                 req.Type,
		Amount:               req.Amount,
		Status:               domain.TransactionStatusCompleted,
		TransactionDate:      transactionDate,
		Description:          req.Description,
		DestinationAccountID: req.DestinationAccountID,
	}
	if transaction.Type != domain.TransactionTypeTransfer {
		transaction.DestinationAccountID = nil
	}

	err := s.store.WithTx(func(tx domain.Store) error {
		if err := s.apply(tx, transaction); err != nil {
			return err
		}
		return tx.Transactions().Create(transaction)
	})

	if err != nil {
		appErr := errors.From(err)
		if appErr.Code == errors.StorageFailure {
			s.recordFailure(transaction)
		}
		s.logger.Error("Transaction failed", "transaction_id", transaction.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Transaction completed", "transaction_id", transaction.ID)
	return transaction, nil
}

// validate runs the read-only checks of the ledger contract. Balance
// sufficiency is checked again under row locks during apply; this pass exists
// to reject bad requests before any transaction is begun.
func (s *TransactionService) validate(req *CreateTransactionRequest) error {
	if !req.Type.Valid() {
		return errors.NewAppErrorf(errors.InvalidInput, "unknown transaction type %q", req.Type)
	}

	exists, err := s.store.Accounts().Exists(req.AccountID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrAccountNotFound
	}

	if !req.Amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	if req.Type == domain.TransactionTypeWithdrawal || req.Type == domain.TransactionTypeTransfer {
		account, err := s.store.Accounts().Get(req.AccountID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(req.Amount) {
			return insufficientFunds(account.Balance, req.Amount)
		}
	}

	if req.Type == domain.TransactionTypeTransfer {
		if req.DestinationAccountID == nil {
			return errors.ErrMissingDestination
		}
		if *req.DestinationAccountID == req.AccountID {
			return errors.ErrSameAccountTransfer
		}
		exists, err := s.store.Accounts().Exists(*req.DestinationAccountID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.ErrDestinationNotFound
		}
	}

	return nil
}

// apply mutates the affected balances within the enclosing transaction. Rows
// are locked in ascending id order so two concurrent transfers between the
// same pair of accounts cannot deadlock.
func (s *TransactionService) apply(tx domain.Store, transaction *domain.Transaction) error {
	accounts := tx.Accounts()

	var source, destination *domain.Account
	var err error

	if transaction.Type == domain.TransactionTypeTransfer {
		destID := *transaction.DestinationAccountID
		if lockOrder(transaction.AccountID, destID) {
			source, err = accounts.GetForUpdate(transaction.AccountID)
			if err == nil {
				destination, err = accounts.GetForUpdate(destID)
			}
		} else {
			destination, err = accounts.GetForUpdate(destID)
			if err == nil {
				source, err = accounts.GetForUpdate(transaction.AccountID)
			}
		}
	} else {
		source, err = accounts.GetForUpdate(transaction.AccountID)
	}
	if err != nil {
		return err
	}

	switch transaction.Type {
	case domain.TransactionTypeDeposit, domain.TransactionTypeInterestCredit:
		return accounts.UpdateBalance(source.ID, source.Balance.Add(transaction.Amount))

	case domain.TransactionTypeWithdrawal:
		if source.Balance.LessThan(transaction.Amount) {
			return insufficientFunds(source.Balance, transaction.Amount)
		}
		return accounts.UpdateBalance(source.ID, source.Balance.Sub(transaction.Amount))

	case domain.TransactionTypeTransfer:
		if source.Balance.LessThan(transaction.Amount) {
			return insufficientFunds(source.Balance, transaction.Amount)
		}
		if err := accounts.UpdateBalance(source.ID, source.Balance.Sub(transaction.Amount)); err != nil {
			return err
		}
		return accounts.UpdateBalance(destination.ID, destination.Balance.Add(transaction.Amount))

	default:
		return errors.NewAppErrorf(errors.InvalidInput, "unknown transaction type %q", transaction.Type)
	}
}

// recordFailure persists a FAILED record after the balance effect has been
// rolled back, keeping an audit trail of the attempt without any ledger drift.
// Best effort: a second storage failure here is only logged.
func (s *TransactionService) recordFailure(transaction *domain.Transaction) {
	failed := *transaction
	failed.Status = domain.TransactionStatusFailed
	if err := s.store.Transactions().Create(&failed); err != nil {
		s.logger.Error("Failed to record failed transaction", "transaction_id", failed.ID, "error", err)
	}
}

func lockOrder(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func insufficientFunds(available, requested decimal.Decimal) *errors.AppError {
	return errors.NewAppErrorf(errors.InsufficientFunds,
		"insufficient funds: available balance %s, requested %s", available, requested)
}

func (s *TransactionService) Get(id uuid.UUID) (*domain.Transaction, error) {
	return s.store.Transactions().Get(id)
}

func (s *TransactionService) List() ([]*domain.Transaction, error) {
	return s.store.Transactions().List()
}

// Delete removes a transaction record outright. Balances are not reversed;
// a subsequent recalculation will no longer see the deleted record.
func (s *TransactionService) Delete(id uuid.UUID) error {
	return s.store.Transactions().Delete(id)
}

func (s *TransactionService) Count() (int64, error) {
	return s.store.Transactions().Count()
}

// CountThisMonth counts transactions dated after the start of the current
// month, for the dashboard.
func (s *TransactionService) CountThisMonth() (int64, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.store.Transactions().CountAfter(startOfMonth)
}

// Recalculate rebuilds the account balance from its opening balance plus the
// date-ordered effects of every COMPLETED transaction touching it, as source
// or as transfer destination. Replaying from the opening balance makes the
// operation idempotent: once converged it is a no-op. The account row stays
// locked while history is replayed, so a transaction committed mid-replay
// cannot be erased by the recalculated balance.
func (s *TransactionService) Recalculate(accountID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := s.store.WithTx(func(tx domain.Store) error {
		account, err := tx.Accounts().GetForUpdate(accountID)
		if err != nil {
			return err
		}

		transactions, err := tx.Transactions().ListForAccount(account.ID)
		if err != nil {
			return err
		}

		balance = account.OpeningBalance
		for _, record := range transactions {
			balance = balance.Add(balanceEffect(account.ID, record))
		}

		if balance.Equal(account.Balance) {
			s.logger.Info("Balance already consistent", "account_id", account.ID, "balance", balance)
			return nil
		}

		if err := tx.Accounts().UpdateBalance(account.ID, balance); err != nil {
			return err
		}

		s.logger.Info("Balance recalculated",
			"account_id", account.ID,
			"old_balance", account.Balance,
			"new_balance", balance)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// balanceEffect is the signed contribution of one transaction to one account's
// balance. FAILED transactions contribute nothing.
func balanceEffect(accountID uuid.UUID, tx *domain.Transaction) decimal.Decimal {
	if tx.Status != domain.TransactionStatusCompleted {
		return decimal.Zero
	}

	if tx.AccountID == accountID {
		switch tx.Type {
		case domain.TransactionTypeDeposit, domain.TransactionTypeInterestCredit:
			return tx.Amount
		case domain.TransactionTypeWithdrawal, domain.TransactionTypeTransfer:
			return tx.Amount.Neg()
		}
		return decimal.Zero
	}

	// Incoming leg of a transfer.
	if tx.Type == domain.TransactionTypeTransfer &&
		tx.DestinationAccountID != nil && *tx.DestinationAccountID == accountID {
		return tx.Amount
	}
	return decimal.Zero
}

// RecalculateAll recalculates every account. Per-account failures are logged
// and skipped so one bad account does not block the rest of the batch.
// Returns the number of accounts whose stored balance changed.
func (s *TransactionService) RecalculateAll() (int, error) {
	accounts, err := s.store.Accounts().List()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, account := range accounts {
		before := account.Balance
		after, err := s.Recalculate(account.ID)
		if err != nil {
			s.logger.Error("Failed to recalculate account balance",
				"account_id", account.ID, "error", err)
			continue
		}
		if !after.Equal(before) {
			updated++
		}
	}

	s.logger.Info("Recalculated all account balances", "accounts", len(accounts), "updated", updated)
	return updated, nil
}
