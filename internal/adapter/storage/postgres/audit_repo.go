package postgres

import (
	"context"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepo creates a PostgreSQL-backed AuditRepository.
func NewAuditRepo(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Insert(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource_type, ip_address, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.UserID, string(log.Action), log.ResourceType,
		log.IPAddress, log.Details, log.CreatedAt,
	)
	return err
}
