package models

import "time"

// EndpointClass groups routes that share a request budget.
type EndpointClass string

const (
	// ClassPublic covers anonymous submission, tracking and verification.
	ClassPublic EndpointClass = "public"
	// ClassLogin covers staff sign-in.
	ClassLogin EndpointClass = "login"
)

// Limit is the budget of one class.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one Allow call.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds
}

// Key scopes a client identifier to its class.
func Key(class EndpointClass, identifier string) string {
	return "ratelimit:" + string(class) + ":" + identifier
}
