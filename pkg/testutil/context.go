package testutil

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"ridergate/pkg/domain"
	"ridergate/pkg/requestcontext"
)

// WithCaller attaches a staff identity to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithCaller(req *http.Request, caller domain.Caller) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithRole attaches a freshly minted staff identity holding role.
// jurisdiction is only meaningful for lga_admin.
func WithRole(req *http.Request, role domain.Role, jurisdiction domain.JurisdictionID) *http.Request {
	return WithCaller(req, NewCaller(role, jurisdiction))
}

// NewCaller builds a staff identity with a random staff ID.
func NewCaller(role domain.Role, jurisdiction domain.JurisdictionID) domain.Caller {
	return domain.Caller{
		StaffID:      domain.StaffID(uuid.New()),
		Role:         role,
		Jurisdiction: jurisdiction,
	}
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
