package service

import (
	"context"
	"errors"
	"testing"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports/mocks"
	"wallet-service/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	walletRepo *mocks.MockWalletRepository
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(d.walletRepo, d.transactor, zerolog.Nop())
	return d
}

func TestWalletService_Credit_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 30_00,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, int64(42), int64(80_00)).Return(nil)

	wallet, err := d.svc.Credit(ctx, 42, 50_00)
	require.NoError(t, err)
	assert.Equal(t, int64(80_00), wallet.Balance)
}

func TestWalletService_Credit_InvalidAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Credit(context.Background(), 42, -5)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWalletService_Debit_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, int64(42), int64(40_00)).Return(nil)

	wallet, err := d.svc.Debit(ctx, 42, 60_00)
	require.NoError(t, err)
	assert.Equal(t, int64(40_00), wallet.Balance)
}

func TestWalletService_Debit_InsufficientBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 10_00,
	}, nil)

	_, err := d.svc.Debit(ctx, 42, 60_00)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestWalletService_Debit_WalletNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(999)).Return(nil, nil)

	_, err := d.svc.Debit(ctx, 999, 60_00)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

func TestWalletService_GetWallet_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.walletRepo.EXPECT().GetByUserID(ctx, int64(7)).Return(&domain.Wallet{
		ID: 42, UserID: 7, Balance: 100_00,
	}, nil)

	wallet, err := d.svc.GetWallet(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), wallet.ID)
}

func TestWalletService_GetWallet_NotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.walletRepo.EXPECT().GetByUserID(ctx, int64(8)).Return(nil, nil)

	_, err := d.svc.GetWallet(ctx, 8)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_004", appErr.Code)
}

func TestWalletService_GetWallet_RepoError(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.walletRepo.EXPECT().GetByUserID(ctx, int64(7)).Return(nil, errors.New("connection refused"))

	_, err := d.svc.GetWallet(ctx, 7)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
}
