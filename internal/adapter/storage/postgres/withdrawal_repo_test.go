package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWithdrawal() *domain.Withdrawal {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Withdrawal{
		ID:               11,
		UserID:           7,
		WalletID:         42,
		Amount:           4000,
		Status:           domain.WithdrawalStatusPending,
		BankName:         "First Bank",
		AccountNumberEnc: "enc_0123456789",
		AccountName:      "Jane Doe",
		Month:            int(now.Month()),
		Year:             now.Year(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func withdrawalColumns() []string {
	return []string{
		"id", "user_id", "wallet_id", "amount", "status", "bank_name",
		"account_number_enc", "account_name", "month", "year",
		"failure_reason", "created_at", "updated_at",
	}
}

func withdrawalRow(w *domain.Withdrawal) *pgxmock.Rows {
	return pgxmock.NewRows(withdrawalColumns()).AddRow(
		w.ID, w.UserID, w.WalletID, w.Amount, w.Status, w.BankName,
		w.AccountNumberEnc, w.AccountName, w.Month, w.Year,
		w.FailureReason, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWithdrawalRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal()
	w.ID = 0

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO withdrawals").
		WithArgs(w.UserID, w.WalletID, w.Amount, w.Status, w.BankName,
			w.AccountNumberEnc, w.AccountName, w.Month, w.Year,
			w.FailureReason, w.CreatedAt, w.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	require.NoError(t, err)
	assert.Equal(t, int64(11), w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal()

	mock.ExpectQuery("SELECT .+ FROM withdrawals WHERE id").
		WithArgs(w.ID).
		WillReturnRows(withdrawalRow(w))

	result, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, domain.WithdrawalStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM withdrawals WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(withdrawalColumns()))

	result, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_ListByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w1 := newTestWithdrawal()
	w2 := newTestWithdrawal()
	w2.ID = 12
	w2.Status = domain.WithdrawalStatusCompleted

	rows := pgxmock.NewRows(withdrawalColumns()).
		AddRow(w1.ID, w1.UserID, w1.WalletID, w1.Amount, w1.Status, w1.BankName,
			w1.AccountNumberEnc, w1.AccountName, w1.Month, w1.Year,
			w1.FailureReason, w1.CreatedAt, w1.UpdatedAt).
		AddRow(w2.ID, w2.UserID, w2.WalletID, w2.Amount, w2.Status, w2.BankName,
			w2.AccountNumberEnc, w2.AccountName, w2.Month, w2.Year,
			w2.FailureReason, w2.CreatedAt, w2.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM withdrawals WHERE user_id .+ ORDER BY created_at DESC").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	result, err := repo.ListByUserID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(11), result[0].ID)
	assert.Equal(t, int64(12), result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_CountReservingForMonth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7), 5, 2026).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	count, err := repo.CountReservingForMonth(context.Background(), tx, 7, 5, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE withdrawals SET status").
		WithArgs(domain.WithdrawalStatusCompleted, (*string)(nil), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(context.Background(), tx, 11, domain.WithdrawalStatusCompleted, nil)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_UpdateStatus_NotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	reason := "account closed"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE withdrawals SET status").
		WithArgs(domain.WithdrawalStatusFailed, &reason, int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(context.Background(), tx, 11, domain.WithdrawalStatusFailed, &reason)
	require.NoError(t, err)
	assert.False(t, updated, "terminal withdrawals must not transition again")
	assert.NoError(t, mock.ExpectationsWereMet())
}
