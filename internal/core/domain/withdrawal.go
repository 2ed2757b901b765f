package domain

import "time"

// WithdrawalStatus is the lifecycle state of a withdrawal request.
// Transitions are one-directional: pending -> completed or pending -> failed.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusFailed    WithdrawalStatus = "failed"
)

// Withdrawal is a request to move funds out of a wallet to an external bank
// account. The wallet is debited at creation time, so a pending withdrawal
// already reserves its amount. Month and year are fixed to the request's
// calendar date and never change.
type Withdrawal struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	WalletID         int64            `json:"wallet_id"`
	Amount           int64            `json:"amount"`
	Status           WithdrawalStatus `json:"status"`
	BankName         string           `json:"bank_name"`
	AccountNumberEnc string           `json:"-"` // AES-256-GCM encrypted at rest
	AccountNumber    string           `json:"-"` // decrypted plaintext, populated on owner reads only
	AccountName      string           `json:"account_name"`
	Month            int              `json:"month"` // 1-12
	Year             int              `json:"year"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsTerminal returns true if the withdrawal is in a final state.
func (w *Withdrawal) IsTerminal() bool {
	return w.Status == WithdrawalStatusCompleted || w.Status == WithdrawalStatusFailed
}

// ReservesFunds reports whether the withdrawal still holds its debited
// amount. A failed withdrawal has been compensated by a credit, so only
// pending and completed withdrawals count toward the monthly quota.
func (w *Withdrawal) ReservesFunds() bool {
	return w.Status == WithdrawalStatusPending || w.Status == WithdrawalStatusCompleted
}
