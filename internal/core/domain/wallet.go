package domain

import "time"

// Wallet is a per-user balance record. Balance is held in the smallest
// currency unit (kobo) and must never go negative; every debit is preceded
// by a sufficiency check while the row is locked.
type Wallet struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
