package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"bank-management/internal/errors"
	"bank-management/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

type CustomerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
}

func (req *CustomerRequest) toInput() (*service.CustomerInput, error) {
	input := &service.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, errors.NewAppError(errors.InvalidInput, "date_of_birth must be YYYY-MM-DD")
		}
		input.DateOfBirth = &dob
	}

	return input, nil
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	writeSuccess(w, http.StatusCreated, "Customer created successfully", "customer", customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.customerService.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Customer fetched successfully", "customer", customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List()
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Customers fetched successfully", "customers", customers)
}

func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.SearchByName(r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Customers fetched successfully", "customers", customers)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

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

	customer, err := h.customerService.Update(id, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Customer updated successfully", "customer", customer)
}

func (h *CustomerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "Customer activated successfully")
}

func (h *CustomerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "Customer deactivated successfully")
}

func (h *CustomerHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if active {
		err = h.customerService.Activate(id)
	} else {
		err = h.customerService.Deactivate(id)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, message, "", nil)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.customerService.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Customer deleted successfully", "", nil)
}
