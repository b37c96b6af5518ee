package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal     TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer       TransactionType = "TRANSFER"
	TransactionTypeInterestCredit TransactionType = "INTEREST_CREDIT"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypeInterestCredit:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger record. AccountID is the source account;
// DestinationAccountID is set only for transfers. Only COMPLETED transactions
// carry a balance effect.
type Transaction struct {
	ID                   uuid.UUID         `json:"transaction_id"`
	AccountID            uuid.UUID         `json:"account_id"`
	Type                 TransactionType   `json:"transaction_type"`
	Amount               decimal.Decimal   `json:"amount"`
	Status               TransactionStatus `json:"status"`
	TransactionDate      time.Time         `json:"transaction_date"`
	Description          string            `json:"description,omitempty"`
	DestinationAccountID *uuid.UUID        `json:"destination_account_id,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

type TransactionRepository interface {
	Create(tx *Transaction) error
	Get(id uuid.UUID) (*Transaction, error)
	List() ([]*Transaction, error)
	// ListForAccount returns every transaction touching the account, as source
	// or as transfer destination, ordered by transaction date ascending.
	ListForAccount(accountID uuid.UUID) ([]*Transaction, error)
	Delete(id uuid.UUID) error
	Count() (int64, error)
	CountAfter(t time.Time) (int64, error)
}
