package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/core/ports/mocks"
	"wallet-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type withdrawalTestDeps struct {
	svc            *WithdrawalServiceImpl
	withdrawalRepo *mocks.MockWithdrawalRepository
	walletRepo     *mocks.MockWalletRepository
	encSvc         *mocks.MockEncryptionService
	transactor     *mocks.MockDBTransactor
	ctrl           *gomock.Controller
}

func setupWithdrawalService(t *testing.T) *withdrawalTestDeps {
	ctrl := gomock.NewController(t)
	d := &withdrawalTestDeps{
		withdrawalRepo: mocks.NewMockWithdrawalRepository(ctrl),
		walletRepo:     mocks.NewMockWalletRepository(ctrl),
		encSvc:         mocks.NewMockEncryptionService(ctrl),
		transactor:     mocks.NewMockDBTransactor(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewWithdrawalService(
		d.withdrawalRepo, d.walletRepo, d.encSvc, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func validWithdrawalRequest() ports.WithdrawalRequest {
	return ports.WithdrawalRequest{
		UserID:        7,
		Role:          domain.RolePharmacy,
		WalletID:      42,
		Amount:        50_00,
		BankName:      "First Bank",
		AccountNumber: "0123456789",
		AccountName:   "Ada Bello",
	}
}

// ==================== RequestWithdrawal Tests ====================

func TestWithdrawalService_RequestWithdrawal_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()

	d.encSvc.EXPECT().Encrypt("0123456789").Return("enc_0123456789", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID:      42,
		UserID:  7,
		Balance: 100_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		CountReservingForMonth(ctx, tx, int64(7), gomock.Any(), gomock.Any()).
		Return(1, nil)
	d.withdrawalRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, w *domain.Withdrawal) error {
			w.ID = 101
			return nil
		},
	)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, int64(42), int64(50_00)).Return(nil)

	result, err := d.svc.RequestWithdrawal(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(101), result.ID)
	assert.Equal(t, domain.WithdrawalStatusPending, result.Status)
	assert.Equal(t, "enc_0123456789", result.AccountNumberEnc)
	assert.Equal(t, int64(50_00), result.Amount)
	assert.Equal(t, int(time.Now().UTC().Month()), result.Month)
	assert.Equal(t, time.Now().UTC().Year(), result.Year)
}

func TestWithdrawalService_RequestWithdrawal_InvalidAmount(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	req := validWithdrawalRequest()
	req.Amount = 0

	_, err := d.svc.RequestWithdrawal(context.Background(), req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_WalletNotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(nil, nil)

	_, err := d.svc.RequestWithdrawal(ctx, req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_ForeignWallet(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID:      42,
		UserID:  999, // someone else's wallet
		Balance: 100_00,
	}, nil)

	_, err := d.svc.RequestWithdrawal(ctx, req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_006", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_QuotaExceeded_Pharmacy(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest() // pharmacy: limit 3

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		CountReservingForMonth(ctx, tx, int64(7), gomock.Any(), gomock.Any()).
		Return(3, nil)

	_, err := d.svc.RequestWithdrawal(ctx, req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_003", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_QuotaExceeded_DefaultRole(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()
	req.Role = domain.RoleResearcher // limit 2

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		CountReservingForMonth(ctx, tx, int64(7), gomock.Any(), gomock.Any()).
		Return(2, nil)

	_, err := d.svc.RequestWithdrawal(ctx, req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_003", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_InsufficientBalance(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()
	req.Amount = 200_00

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		CountReservingForMonth(ctx, tx, int64(7), gomock.Any(), gomock.Any()).
		Return(0, nil)

	_, err := d.svc.RequestWithdrawal(ctx, req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestWithdrawalService_RequestWithdrawal_ExactBalance(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := validWithdrawalRequest()
	req.Amount = 100_00

	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		CountReservingForMonth(ctx, tx, int64(7), gomock.Any(), gomock.Any()).
		Return(0, nil)
	d.withdrawalRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Withdrawing the full balance leaves zero, which is allowed
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, int64(42), int64(0)).Return(nil)

	result, err := d.svc.RequestWithdrawal(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, result.Status)
}

func TestWithdrawalService_RequestWithdrawal_EncryptionFailure(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	req := validWithdrawalRequest()
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("", errors.New("bad key"))

	_, err := d.svc.RequestWithdrawal(context.Background(), req)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_003", appErr.Code)
}

// ==================== CompleteWithdrawal Tests ====================

func TestWithdrawalService_CompleteWithdrawal_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(101)).Return(&domain.Withdrawal{
		ID:     101,
		UserID: 7,
		Status: domain.WithdrawalStatusPending,
		Amount: 50_00,
	}, nil)
	d.withdrawalRepo.EXPECT().
		UpdateStatus(ctx, tx, int64(101), domain.WithdrawalStatusCompleted, nil).
		Return(true, nil)

	result, err := d.svc.CompleteWithdrawal(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCompleted, result.Status)
}

func TestWithdrawalService_CompleteWithdrawal_NotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(999)).Return(nil, nil)

	_, err := d.svc.CompleteWithdrawal(ctx, 999)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

func TestWithdrawalService_CompleteWithdrawal_AlreadyTerminal(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(101)).Return(&domain.Withdrawal{
		ID:     101,
		Status: domain.WithdrawalStatusCompleted,
	}, nil)

	_, err := d.svc.CompleteWithdrawal(ctx, 101)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_005", appErr.Code)
}

func TestWithdrawalService_CompleteWithdrawal_LostRace(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(101)).Return(&domain.Withdrawal{
		ID:     101,
		Status: domain.WithdrawalStatusPending,
	}, nil)
	// Guarded update reports no row transitioned
	d.withdrawalRepo.EXPECT().
		UpdateStatus(ctx, tx, int64(101), domain.WithdrawalStatusCompleted, nil).
		Return(false, nil)

	_, err := d.svc.CompleteWithdrawal(ctx, 101)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_005", appErr.Code)
}

// ==================== FailWithdrawal Tests ====================

func TestWithdrawalService_FailWithdrawal_RefundsWallet(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	reason := "bank rejected transfer"

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(101)).Return(&domain.Withdrawal{
		ID:       101,
		UserID:   7,
		WalletID: 42,
		Amount:   50_00,
		Status:   domain.WithdrawalStatusPending,
	}, nil)
	d.withdrawalRepo.EXPECT().
		UpdateStatus(ctx, tx, int64(101), domain.WithdrawalStatusFailed, &reason).
		Return(true, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 50_00,
	}, nil)
	// 50.00 refunded on top of the remaining 50.00
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, int64(42), int64(100_00)).Return(nil)

	result, err := d.svc.FailWithdrawal(ctx, 101, reason)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusFailed, result.Status)
	require.NotNil(t, result.FailureReason)
	assert.Equal(t, reason, *result.FailureReason)
}

func TestWithdrawalService_FailWithdrawal_AlreadyTerminal(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(101)).Return(&domain.Withdrawal{
		ID:     101,
		Status: domain.WithdrawalStatusFailed,
	}, nil)

	_, err := d.svc.FailWithdrawal(ctx, 101, "whatever")
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_005", appErr.Code)
}

func TestWithdrawalService_FailWithdrawal_NotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(999)).Return(nil, nil)

	_, err := d.svc.FailWithdrawal(ctx, 999, "reason")
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

// ==================== Read Tests ====================

func TestWithdrawalService_GetWithdrawals_DecryptsAccountNumbers(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.withdrawalRepo.EXPECT().ListByUserID(ctx, int64(7)).Return([]domain.Withdrawal{
		{ID: 1, UserID: 7, AccountNumberEnc: "enc_1"},
		{ID: 2, UserID: 7, AccountNumberEnc: "enc_2"},
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_1").Return("0123456789", nil)
	d.encSvc.EXPECT().Decrypt("enc_2").Return("9876543210", nil)

	result, err := d.svc.GetWithdrawals(ctx, 7)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "0123456789", result[0].AccountNumber)
	assert.Equal(t, "9876543210", result[1].AccountNumber)
}

func TestWithdrawalService_GetWithdrawals_DecryptFailureDoesNotBreakRead(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.withdrawalRepo.EXPECT().ListByUserID(ctx, int64(7)).Return([]domain.Withdrawal{
		{ID: 1, UserID: 7, AccountNumberEnc: "corrupted"},
	}, nil)
	d.encSvc.EXPECT().Decrypt("corrupted").Return("", errors.New("cipher: message authentication failed"))

	result, err := d.svc.GetWithdrawals(ctx, 7)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Empty(t, result[0].AccountNumber)
}

func TestWithdrawalService_GetWithdrawalByID_NotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.withdrawalRepo.EXPECT().GetByID(ctx, int64(404)).Return(nil, nil)

	_, err := d.svc.GetWithdrawalByID(ctx, 404)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

func TestWithdrawalService_GetWithdrawalByID_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.withdrawalRepo.EXPECT().GetByID(ctx, int64(101)).Return(&domain.Withdrawal{
		ID:               101,
		UserID:           7,
		AccountNumberEnc: "enc_0123456789",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_0123456789").Return("0123456789", nil)

	result, err := d.svc.GetWithdrawalByID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), result.ID)
	assert.Equal(t, "0123456789", result.AccountNumber)
}
