package handler

import (
	"strconv"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/adapter/http/middleware"
	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet and withdrawal endpoints.
type WalletHandler struct {
	walletSvc     ports.WalletService
	withdrawalSvc ports.WithdrawalService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, withdrawalSvc ports.WithdrawalService) *WalletHandler {
	return &WalletHandler{
		walletSvc:     walletSvc,
		withdrawalSvc: withdrawalSvc,
	}
}

// GetWallet handles GET /api/v2/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// RequestWithdrawal handles POST /api/v2/wallet/withdrawals.
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	role, ok := callerRole(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	// Withdrawals always target the caller's own wallet.
	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	withdrawal, err := h.withdrawalSvc.RequestWithdrawal(c.Request.Context(), ports.WithdrawalRequest{
		UserID:        userID,
		Role:          role,
		WalletID:      wallet.ID,
		Amount:        req.Amount,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWithdrawalResponse(withdrawal))
}

// GetWithdrawals handles GET /api/v2/wallet/withdrawals.
func (h *WalletHandler) GetWithdrawals(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	withdrawals, err := h.withdrawalSvc.GetWithdrawals(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWithdrawalListResponse(withdrawals))
}

// GetWithdrawalByID handles GET /api/v2/wallet/withdrawals/:id.
// A withdrawal that exists but belongs to another user returns 403,
// a missing one 404.
func (h *WalletHandler) GetWithdrawalByID(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid withdrawal id"))
		return
	}

	withdrawal, err := h.withdrawalSvc.GetWithdrawalByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if withdrawal.UserID != userID {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	response.OK(c, dto.NewWithdrawalResponse(withdrawal))
}

func callerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func callerRole(c *gin.Context) (domain.Role, bool) {
	v, exists := c.Get(middleware.CtxRole)
	if !exists {
		return "", false
	}
	role, ok := v.(domain.Role)
	return role, ok
}
