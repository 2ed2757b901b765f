package handler

import (
	"strconv"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettlementHandler handles settlement callbacks from the payment processor.
// These endpoints are authenticated with HMAC signatures, not JWT.
type SettlementHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(withdrawalSvc ports.WithdrawalService) *SettlementHandler {
	return &SettlementHandler{withdrawalSvc: withdrawalSvc}
}

// Complete handles POST /api/v2/settlements/:id/complete.
func (h *SettlementHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid withdrawal id"))
		return
	}

	withdrawal, err := h.withdrawalSvc.CompleteWithdrawal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWithdrawalResponse(withdrawal))
}

// Fail handles POST /api/v2/settlements/:id/fail.
func (h *SettlementHandler) Fail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid withdrawal id"))
		return
	}

	var req dto.FailSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	withdrawal, err := h.withdrawalSvc.FailWithdrawal(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWithdrawalResponse(withdrawal))
}
