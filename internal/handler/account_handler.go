package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
	"bank-management/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AccountRequest struct {
	CustomerID    string `json:"customer_id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	InterestRate  string `json:"interest_rate"`
	Status        string `json:"status,omitempty"`
}

func (req *AccountRequest) toInput() (*service.AccountInput, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, errors.NewAppError(errors.InvalidInput, "invalid customer_id format")
	}

	balance := decimal.Zero
	if req.Balance != "" {
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return nil, errors.NewAppError(errors.InvalidInput, "invalid balance format")
		}
	}

	rate := decimal.Zero
	if req.InterestRate != "" {
		rate, err = decimal.NewFromString(req.InterestRate)
		if err != nil {
			return nil, errors.NewAppError(errors.InvalidInput, "invalid interest_rate format")
		}
	}

	return &service.AccountInput{
		CustomerID:    customerID,
		AccountNumber: req.AccountNumber,
		Type:          domain.AccountType(req.AccountType),
		Balance:       balance.Round(2),
		InterestRate:  rate.Round(4),
		Status:        domain.AccountStatus(req.Status),
	}, nil
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.Create(input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Account created successfully", "account", account)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account fetched successfully", "account", account)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.List()
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Accounts fetched successfully", "accounts", accounts)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.Update(id, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account updated successfully", "account", account)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.accountService.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account deleted successfully", "", nil)
}
