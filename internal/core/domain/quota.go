package domain

// Withdrawal quotas per calendar month. Pharmacy accounts settle supplier
// invoices more often and get the higher tier; every other role shares the
// default.
const (
	quotaPharmacy = 3
	quotaDefault  = 2
)

// WithdrawalQuota returns the maximum number of withdrawal requests the
// given role may submit within one calendar month. Total over the role
// domain: unknown roles fall back to the default tier.
func WithdrawalQuota(role Role) int {
	if role == RolePharmacy {
		return quotaPharmacy
	}
	return quotaDefault
}
