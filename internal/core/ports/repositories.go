package ports

import (
	"context"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks; GetByIDForUpdate
// takes a row lock so the balance check and write cannot interleave with a
// concurrent debit on the same wallet.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, balance int64) error
}

// WithdrawalRepository defines persistence operations for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, withdrawal *domain.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Withdrawal, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	// CountReservingForMonth counts the user's withdrawals for the given
	// calendar month that still reserve funds (pending or completed).
	CountReservingForMonth(ctx context.Context, tx pgx.Tx, userID int64, month, year int) (int, error)
	// UpdateStatus advances a pending withdrawal to a terminal status.
	// Returns domain knowledge of whether the transition happened via the
	// updated flag: false means the withdrawal was not pending anymore.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, failureReason *string) (bool, error)
}

// AuditRepository persists append-only audit records.
type AuditRepository interface {
	Insert(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
