package dto

import (
	"strings"
	"time"

	"wallet-service/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=benfek principal pharmacy researcher"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// WithdrawalRequest is the request body for requesting a withdrawal.
// account_number must be at least 10 digits.
type WithdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankName      string `json:"bank_name" binding:"required,min=1,max=100"`
	AccountNumber string `json:"account_number" binding:"required,min=10,max=32,numeric"`
	AccountName   string `json:"account_name" binding:"required,min=1,max=100,account_name"`
}

// FailSettlementRequest is the request body for a failed settlement callback.
type FailSettlementRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// WalletResponse is the response for wallet queries.
type WalletResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WithdrawalResponse is the response body for withdrawal results.
// AccountNumber is masked: only the last 4 digits are shown.
type WithdrawalResponse struct {
	ID            int64   `json:"id"`
	WalletID      int64   `json:"wallet_id"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
	BankName      string  `json:"bank_name"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	FailureReason *string `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// NewWalletResponse maps a domain wallet to its API shape.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// NewWithdrawalResponse maps a domain withdrawal to its API shape.
func NewWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID,
		WalletID:      w.WalletID,
		Amount:        w.Amount,
		Status:        string(w.Status),
		BankName:      w.BankName,
		AccountNumber: MaskAccountNumber(w.AccountNumber),
		AccountName:   w.AccountName,
		Month:         w.Month,
		Year:          w.Year,
		FailureReason: w.FailureReason,
		CreatedAt:     w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     w.UpdatedAt.Format(time.RFC3339),
	}
}

// NewWithdrawalListResponse maps a slice of withdrawals.
func NewWithdrawalListResponse(ws []domain.Withdrawal) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(ws))
	for i := range ws {
		out = append(out, NewWithdrawalResponse(&ws[i]))
	}
	return out
}

// MaskAccountNumber hides all but the last 4 characters.
func MaskAccountNumber(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return accountNumber
	}
	return strings.Repeat("*", len(accountNumber)-4) + accountNumber[len(accountNumber)-4:]
}
