package service

import (
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
)

// QuotaGate is the stateless entitlement check run before any expensive
// work. It never mutates anything: the usage increment happens only after a
// successful answer, so failed attempts are never charged.
type QuotaGate struct{}

// NewQuotaGate creates a new quota gate
func NewQuotaGate() *QuotaGate {
	return &QuotaGate{}
}

// Check evaluates the tenant's consumption against its entitlement. The
// returned error is a *domain.QuotaExceededError carrying the snapshot the
// caller needs to render an upgrade prompt; nil means allowed.
func (g *QuotaGate) Check(tenant *domain.Tenant) error {
	if tenant.QuotaExceeded() {
		return &domain.QuotaExceededError{
			Used:  tenant.MessagesUsed,
			Quota: tenant.MessageQuota,
		}
	}
	return nil
}
