package handler

import (
	"log/slog"
	"net/http"

	"bank-management/internal/service"
)

type DashboardHandler struct {
	customerService    *service.CustomerService
	accountService     *service.AccountService
	transactionService *service.TransactionService
	logger             *slog.Logger
}

func NewDashboardHandler(
	customerService *service.CustomerService,
	accountService *service.AccountService,
	transactionService *service.TransactionService,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		customerService:    customerService,
		accountService:     accountService,
		transactionService: transactionService,
		logger:             logger,
	}
}

type DashboardStats struct {
	TotalCustomers      int64  `json:"totalCustomers"`
	ActiveCustomers     int64  `json:"activeCustomers"`
	TotalAccounts       int64  `json:"totalAccounts"`
	ActiveAccounts      int64  `json:"activeAccounts"`
	TotalBalance        string `json:"totalBalance"`
	TotalTransactions   int64  `json:"totalTransactions"`
	MonthlyTransactions int64  `json:"monthlyTransactions"`
}

// Stats aggregates counts across all three services. Per-service failures are
// logged and leave that section zeroed rather than failing the whole response.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := DashboardStats{TotalBalance: "0"}

	if total, err := h.customerService.Count(); err == nil {
		stats.TotalCustomers = total
	} else {
		h.logger.Error("Failed to count customers", "error", err)
	}
	if active, err := h.customerService.CountActive(); err == nil {
		stats.ActiveCustomers = active
	} else {
		h.logger.Error("Failed to count active customers", "error", err)
	}

	if total, err := h.accountService.Count(); err == nil {
		stats.TotalAccounts = total
	} else {
		h.logger.Error("Failed to count accounts", "error", err)
	}
	if active, err := h.accountService.CountActive(); err == nil {
		stats.ActiveAccounts = active
	} else {
		h.logger.Error("Failed to count active accounts", "error", err)
	}
	if balance, err := h.accountService.TotalBalance(); err == nil {
		stats.TotalBalance = balance.String()
	} else {
		h.logger.Error("Failed to sum balances", "error", err)
	}

	if total, err := h.transactionService.Count(); err == nil {
		stats.TotalTransactions = total
	} else {
		h.logger.Error("Failed to count transactions", "error", err)
	}
	if monthly, err := h.transactionService.CountThisMonth(); err == nil {
		stats.MonthlyTransactions = monthly
	} else {
		h.logger.Error("Failed to count monthly transactions", "error", err)
	}

	writeSuccess(w, http.StatusOK, "Dashboard stats fetched successfully", "stats", stats)
}
