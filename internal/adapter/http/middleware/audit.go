package middleware

import (
	"encoding/json"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and route templates to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *int64
		if uid, exists := c.Get(CtxUserID); exists {
			if id, ok := uid.(int64); ok {
				userID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v2/auth/register" && method == "POST":
		return domain.AuditActionRegister, "user"
	case route == "/api/v2/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case route == "/api/v2/wallet/withdrawals" && method == "POST":
		return domain.AuditActionWithdrawalRequest, "withdrawal"
	case route == "/api/v2/settlements/:id/complete" && method == "POST":
		return domain.AuditActionWithdrawalComplete, "withdrawal"
	case route == "/api/v2/settlements/:id/fail" && method == "POST":
		return domain.AuditActionWithdrawalFail, "withdrawal"
	}
	return "", ""
}
