package service

import (
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

var accountNumberPattern = regexp.MustCompile(`^[0-9]{8,12}$`)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

type AccountInput struct {
	CustomerID    uuid.UUID
	AccountNumber string
	Type          domain.AccountType
	Balance       decimal.Decimal
	InterestRate  decimal.Decimal
	Status        domain.AccountStatus
}

func (s *AccountService) Create(input *AccountInput) (*domain.Account, error) {
	s.logger.Info("Creating account", "account_number", input.AccountNumber, "customer_id", input.CustomerID)

	if err := validateAccountInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.AccountStatusActive
	}
	if !status.Valid() {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown account status %q", status)
	}

	account := &domain.Account{
		ID:             uuid.New(),
		CustomerID:     input.CustomerID,
		AccountNumber:  input.AccountNumber,
		Type:           input.Type,
		Balance:        input.Balance,
		OpeningBalance: input.Balance,
		InterestRate:   input.InterestRate,
		Status:         status,
	}

	if err := s.store.Accounts().Create(account); err != nil {
		return nil, err
	}

	return account, nil
}

func validateAccountInput(input *AccountInput) error {
	if input.CustomerID == uuid.Nil {
		return errors.NewAppError(errors.InvalidInput, "customer ID is required")
	}
	if !accountNumberPattern.MatchString(input.AccountNumber) {
		return errors.NewAppError(errors.InvalidInput, "account number must be 8-12 digits")
	}
	if !input.Type.Valid() {
		return errors.NewAppErrorf(errors.InvalidInput, "unknown account type %q", input.Type)
	}
	if input.Balance.IsNegative() {
		return errors.NewAppError(errors.InvalidInput, "balance cannot be negative")
	}
	if input.InterestRate.IsNegative() {
		return errors.NewAppError(errors.InvalidInput, "interest rate cannot be negative")
	}
	return nil
}

func (s *AccountService) Get(id uuid.UUID) (*domain.Account, error) {
	return s.store.Accounts().Get(id)
}

func (s *AccountService) List() ([]*domain.Account, error) {
	return s.store.Accounts().List()
}

// Update overwrites every mutable field of the account. The opening balance
// and creation timestamp are immutable.
func (s *AccountService) Update(id uuid.UUID, input *AccountInput) (*domain.Account, error) {
	if err := validateAccountInput(input); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown account status %q", input.Status)
	}

	account, err := s.store.Accounts().Get(id)
	if err != nil {
		return nil, err
	}

	account.CustomerID = input.CustomerID
	account.AccountNumber = input.AccountNumber
	account.Type = input.Type
	account.Balance = input.Balance
	account.InterestRate = input.InterestRate
	account.Status = input.Status

	if err := s.store.Accounts().Update(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account updated", "account_id", id)
	return account, nil
}

func (s *AccountService) Delete(id uuid.UUID) error {
	if err := s.store.Accounts().Delete(id); err != nil {
		return err
	}
	s.logger.Info("Account deleted", "account_id", id)
	return nil
}

func (s *AccountService) Count() (int64, error) {
	return s.store.Accounts().Count()
}

func (s *AccountService) CountActive() (int64, error) {
	return s.store.Accounts().CountByStatus(domain.AccountStatusActive)
}

func (s *AccountService) TotalBalance() (decimal.Decimal, error) {
	return s.store.Accounts().TotalActiveBalance()
}
