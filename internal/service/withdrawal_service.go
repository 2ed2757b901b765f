package service

import (
	"context"
	"fmt"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// WithdrawalServiceImpl implements ports.WithdrawalService.
//
// RequestWithdrawal locks the wallet row before the quota count, the balance
// check and the insert, so two concurrent requests for the same user are
// serialized: the second one observes the first one's debit and its quota row.
type WithdrawalServiceImpl struct {
	withdrawalRepo ports.WithdrawalRepository
	walletRepo     ports.WalletRepository
	encSvc         ports.EncryptionService
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	withdrawalRepo ports.WithdrawalRepository,
	walletRepo ports.WalletRepository,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		encSvc:         encSvc,
		transactor:     transactor,
		log:            log,
	}
}

// RequestWithdrawal creates a pending withdrawal and debits the wallet in
// the same transaction.
func (s *WithdrawalServiceImpl) RequestWithdrawal(ctx context.Context, req ports.WithdrawalRequest) (*domain.Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	accountNumberEnc, err := s.encSvc.Encrypt(req.AccountNumber)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt account number: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet. The row lock serializes everything below against
	// concurrent requests for the same wallet.
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.UserID != req.UserID {
		return nil, apperror.ErrForbidden()
	}

	// Business rule: monthly quota by role
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()
	count, err := s.withdrawalRepo.CountReservingForMonth(ctx, dbTx, req.UserID, month, year)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count monthly withdrawals: %w", err))
	}
	limit := domain.WithdrawalQuota(req.Role)
	if count >= limit {
		return nil, apperror.ErrQuotaExceeded(limit)
	}

	// Business rule: sufficient funds
	if wallet.Balance < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	withdrawal := &domain.Withdrawal{
		UserID:           req.UserID,
		WalletID:         wallet.ID,
		Amount:           req.Amount,
		Status:           domain.WithdrawalStatusPending,
		BankName:         req.BankName,
		AccountNumberEnc: accountNumberEnc,
		AccountNumber:    req.AccountNumber,
		AccountName:      req.AccountName,
		Month:            month,
		Year:             year,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Persist: create withdrawal
	if err := s.withdrawalRepo.Create(ctx, dbTx, withdrawal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	// Persist: debit wallet
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance-req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("withdrawal_id", withdrawal.ID).
		Int64("user_id", req.UserID).
		Int64("amount", req.Amount).
		Int("month", month).
		Int("year", year).
		Msg("withdrawal requested")

	return withdrawal, nil
}

// GetWithdrawals lists the user's withdrawals, newest first.
func (s *WithdrawalServiceImpl) GetWithdrawals(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	for i := range withdrawals {
		s.decryptAccountNumber(&withdrawals[i])
	}
	return withdrawals, nil
}

// GetWithdrawalByID fetches a single withdrawal. Ownership is enforced by
// the caller; this only answers existence.
func (s *WithdrawalServiceImpl) GetWithdrawalByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrNotFound("withdrawal")
	}
	s.decryptAccountNumber(withdrawal)
	return withdrawal, nil
}

// CompleteWithdrawal marks a pending withdrawal as completed. The funds were
// already debited at request time, so no balance change happens here.
func (s *WithdrawalServiceImpl) CompleteWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrNotFound("withdrawal")
	}
	if withdrawal.IsTerminal() {
		return nil, apperror.ErrWithdrawalNotPending()
	}

	updated, err := s.withdrawalRepo.UpdateStatus(ctx, dbTx, id, domain.WithdrawalStatusCompleted, nil)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}
	if !updated {
		return nil, apperror.ErrWithdrawalNotPending()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	withdrawal.Status = domain.WithdrawalStatusCompleted
	withdrawal.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Int64("withdrawal_id", id).
		Int64("user_id", withdrawal.UserID).
		Msg("withdrawal completed")

	return withdrawal, nil
}

// FailWithdrawal marks a pending withdrawal as failed and credits the
// reserved amount back to the wallet in the same transaction.
func (s *WithdrawalServiceImpl) FailWithdrawal(ctx context.Context, id int64, reason string) (*domain.Withdrawal, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrNotFound("withdrawal")
	}
	if withdrawal.IsTerminal() {
		return nil, apperror.ErrWithdrawalNotPending()
	}

	updated, err := s.withdrawalRepo.UpdateStatus(ctx, dbTx, id, domain.WithdrawalStatusFailed, &reason)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}
	if !updated {
		return nil, apperror.ErrWithdrawalNotPending()
	}

	// Compensating credit: the request debited the wallet, failure refunds it.
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, withdrawal.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance+withdrawal.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("refund wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	withdrawal.Status = domain.WithdrawalStatusFailed
	withdrawal.FailureReason = &reason
	withdrawal.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Int64("withdrawal_id", id).
		Int64("user_id", withdrawal.UserID).
		Int64("refunded", withdrawal.Amount).
		Str("reason", reason).
		Msg("withdrawal failed, wallet refunded")

	return withdrawal, nil
}

// decryptAccountNumber fills the transient plaintext field. Decryption
// failures are logged, never surfaced: a read must not break on one bad row.
func (s *WithdrawalServiceImpl) decryptAccountNumber(w *domain.Withdrawal) {
	plain, err := s.encSvc.Decrypt(w.AccountNumberEnc)
	if err != nil {
		s.log.Warn().Err(err).Int64("withdrawal_id", w.ID).Msg("failed to decrypt account number")
		return
	}
	w.AccountNumber = plain
}
