package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create inserts a new withdrawal within a database transaction and fills
// in the generated id.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (user_id, wallet_id, amount, status, bank_name,
		account_number_enc, account_name, month, year, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	err := tx.QueryRow(ctx, query,
		w.UserID, w.WalletID, w.Amount, w.Status, w.BankName,
		w.AccountNumberEnc, w.AccountName, w.Month, w.Year,
		w.FailureReason, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// GetByID fetches a withdrawal by id.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	query := selectWithdrawal + ` WHERE id = $1`
	return scanWithdrawal(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a withdrawal by id with a row lock.
// This MUST be called within a transaction.
func (r *WithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Withdrawal, error) {
	query := selectWithdrawal + ` WHERE id = $1 FOR UPDATE`
	return scanWithdrawal(tx.QueryRow(ctx, query, id))
}

// ListByUserID fetches all withdrawals of a user, newest first.
func (r *WithdrawalRepo) ListByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	query := selectWithdrawal + ` WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var result []domain.Withdrawal
	for rows.Next() {
		w := domain.Withdrawal{}
		err := rows.Scan(
			&w.ID, &w.UserID, &w.WalletID, &w.Amount, &w.Status,
			&w.BankName, &w.AccountNumberEnc, &w.AccountName,
			&w.Month, &w.Year, &w.FailureReason, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal row: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawal rows: %w", err)
	}
	return result, nil
}

// CountReservingForMonth counts the user's withdrawals for a calendar month
// in statuses that still reserve funds. Runs inside the caller's transaction
// so the count is serialized with the wallet row lock.
func (r *WithdrawalRepo) CountReservingForMonth(ctx context.Context, tx pgx.Tx, userID int64, month, year int) (int, error) {
	query := `SELECT COUNT(*) FROM withdrawals
		WHERE user_id = $1 AND month = $2 AND year = $3 AND status IN ('pending', 'completed')`

	var count int
	err := tx.QueryRow(ctx, query, userID, month, year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count monthly withdrawals: %w", err)
	}
	return count, nil
}

// UpdateStatus advances a pending withdrawal to a terminal status within a
// transaction. The status guard in the WHERE clause enforces the
// one-directional transition: a withdrawal that already left pending is
// reported via updated=false, not overwritten.
func (r *WithdrawalRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, failureReason *string) (bool, error) {
	query := `UPDATE withdrawals SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, failureReason, id)
	if err != nil {
		return false, fmt.Errorf("update withdrawal status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const selectWithdrawal = `SELECT id, user_id, wallet_id, amount, status, bank_name,
	account_number_enc, account_name, month, year, failure_reason, created_at, updated_at
	FROM withdrawals`

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	w := &domain.Withdrawal{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.WalletID, &w.Amount, &w.Status,
		&w.BankName, &w.AccountNumberEnc, &w.AccountName,
		&w.Month, &w.Year, &w.FailureReason, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan withdrawal: %w", err)
	}
	return w, nil
}
