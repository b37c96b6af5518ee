package handler

import (
	"encoding/json"
	"net/http"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
	"bank-management/internal/service"
)

// AuthHandler provides the register/login stubs. Login is an existence check
// by email or phone; there is no credential verification.
type AuthHandler struct {
	customerService *service.CustomerService
}

func NewAuthHandler(customerService *service.CustomerService) *AuthHandler {
	return &AuthHandler{
		customerService: customerService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.customerService.Create(input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Registration successful", "customer", customer)
}

type LoginRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	var customer *domain.Customer
	var err error
	switch {
	case req.Email != "":
		customer, err = h.customerService.GetByEmail(req.Email)
	case req.Phone != "":
		customer, err = h.customerService.GetByPhone(req.Phone)
	default:
		writeError(w, errors.NewAppError(errors.InvalidInput, "email or phone is required"))
		return
	}

	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid credentials"))
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", "customer", customer)
}
