package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
	"bank-management/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type TransactionRequest struct {
	AccountID            string `json:"account_id"`
	TransactionType      string `json:"transaction_type"`
	Amount               string `json:"amount"`
	Description          string `json:"description,omitempty"`
	DestinationAccountID string `json:"destination_account_id,omitempty"`
	TransactionDate      string `json:"transaction_date,omitempty"` // RFC 3339
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid account_id format"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format"))
		return
	}

	createReq := &service.CreateTransactionRequest{
		AccountID:   accountID,
		Type:        domain.TransactionType(req.TransactionType),
		Amount:      amount.Round(2),
		Description: req.Description,
	}

	if req.DestinationAccountID != "" {
		destID, err := uuid.Parse(req.DestinationAccountID)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid destination_account_id format"))
			return
		}
		createReq.DestinationAccountID = &destID
	}

	if req.TransactionDate != "" {
		date, err := time.Parse(time.RFC3339, req.TransactionDate)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "transaction_date must be RFC 3339"))
			return
		}
		createReq.TransactionDate = &date
	}

	transaction, err := h.transactionService.Create(createReq)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Transaction created successfully", "transaction", transaction)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.transactionService.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Transaction fetched successfully", "transaction", transaction)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.List()
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Transactions fetched successfully", "transactions", transactions)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.transactionService.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Transaction deleted successfully", "", nil)
}

// RecalculateBalances rebuilds every account balance from transaction history.
func (h *TransactionHandler) RecalculateBalances(w http.ResponseWriter, r *http.Request) {
	updated, err := h.transactionService.RecalculateAll()
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "All account balances recalculated successfully", "updated_accounts", updated)
}
