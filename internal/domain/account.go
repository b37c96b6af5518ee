package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings      AccountType = "SAVINGS"
	AccountTypeChecking     AccountType = "CHECKING"
	AccountTypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeFixedDeposit:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed, AccountStatusSuspended:
		return true
	}
	return false
}

// Account is a customer-owned ledger account. Balance and OpeningBalance are
// scale-2 decimals; InterestRate is scale 4. OpeningBalance is captured once at
// creation and is the baseline for balance recalculation.
type Account struct {
	ID             uuid.UUID       `json:"account_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	AccountNumber  string          `json:"account_number"`
	Type           AccountType     `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	Status         AccountStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type AccountRepository interface {
	Create(account *Account) error
	Get(id uuid.UUID) (*Account, error)
	// GetForUpdate locks the account row for the duration of the enclosing
	// database transaction.
	GetForUpdate(id uuid.UUID) (*Account, error)
	Exists(id uuid.UUID) (bool, error)
	List() ([]*Account, error)
	Update(account *Account) error
	UpdateBalance(id uuid.UUID, balance decimal.Decimal) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
	CountByStatus(status AccountStatus) (int64, error)
	// TotalActiveBalance sums the balances of ACTIVE accounts.
	TotalActiveBalance() (decimal.Decimal, error)
}
