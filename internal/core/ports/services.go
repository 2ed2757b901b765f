package ports

import (
	"context"
	"time"

	"wallet-service/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// EncryptionService handles AES-256-GCM encryption of bank account numbers.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of
// settlement callbacks.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID int64, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID int64
	Role   domain.Role
}

// NonceStore manages nonce uniqueness for settlement callback replay
// prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// WalletService owns all wallet balance mutations and lookups.
type WalletService interface {
	Credit(ctx context.Context, walletID int64, amount int64) (*domain.Wallet, error)
	Debit(ctx context.Context, walletID int64, amount int64) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetWalletByID(ctx context.Context, walletID int64) (*domain.Wallet, error)
}

// WithdrawalService orchestrates the withdrawal lifecycle.
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*domain.Withdrawal, error)
	GetWithdrawals(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	GetWithdrawalByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	CompleteWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error)
	FailWithdrawal(ctx context.Context, id int64, reason string) (*domain.Withdrawal, error)
}

// WithdrawalRequest holds validated input for a withdrawal request.
type WithdrawalRequest struct {
	UserID        int64
	Role          domain.Role
	WalletID      int64
	Amount        int64
	BankName      string
	AccountNumber string
	AccountName   string
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Email    string
	Password string
	Role     domain.Role
}

// AuditService records audit events without blocking the request path.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
