package testutil

import (
	"net/http"
	"time"

	id "mandate/pkg/domain"
	"mandate/pkg/requestcontext"
)

// WithStaff marks req as authenticated, the way the auth middleware would.
func WithStaff(req *http.Request, staffID id.StaffID, role id.Role) *http.Request {
	return req.WithContext(requestcontext.WithStaff(req.Context(), staffID, role))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
