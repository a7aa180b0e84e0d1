package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	tests := []struct {
		event    AuditEvent
		expected EventCategory
	}{
		{EventRiderRegistered, CategoryCompliance},
		{EventRiderRevoked, CategoryCompliance},
		{EventIncidentReported, CategoryCompliance},
		{EventAccessDenied, CategorySecurity},
		{EventRateLimitExceeded, CategorySecurity},
		{EventVerificationPerformed, CategoryOperations},
		{AuditEvent("something_new"), CategoryOperations},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Category())
		})
	}
}
