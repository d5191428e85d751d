package service

import (
	"errors"
	"testing"

	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestQuotaGate(t *testing.T) {
	gate := NewQuotaGate()

	tests := []struct {
		name   string
		used   int
		quota  int
		denied bool
	}{
		{"well under quota", 10, 500, false},
		{"one remaining", 499, 500, false},
		{"exactly at quota", 500, 500, true},
		{"over quota", 501, 500, true},
		{"zero quota denies everything", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := activeTenant(tt.used, tt.quota)
			err := gate.Check(tenant)

			if !tt.denied {
				assert.NoError(t, err)
				return
			}
			var quotaErr *domain.QuotaExceededError
			if assert.True(t, errors.As(err, &quotaErr)) {
				assert.Equal(t, tt.used, quotaErr.Used)
				assert.Equal(t, tt.quota, quotaErr.Quota)
			}
		})
	}
}
