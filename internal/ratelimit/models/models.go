package models

import (
	"strings"
	"time"
)

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

// EndpointClass groups routes that share one budget.
type EndpointClass string

const ClassSubmit EndpointClass = "submit"

// KeyFor builds the bucket key for a client IP within a class.
func KeyFor(class EndpointClass, ip string) string {
	return strings.Join([]string{"ratelimit", string(class), "ip", ip}, ":")
}
