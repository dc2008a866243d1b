// Package payment reconciles local invoices against an external payment
// gateway: it starts a payment, remembers the gateway's correlation id in the
// user's session, and classifies the gateway's verdict when the user returns.
package payment

import "strings"

// Status is the normalized verdict of a gateway status check.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusPending
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// GatewayStatus is the gateway's raw status-check response.
type GatewayStatus struct {
	Status  string `json:"status"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

var (
	successValues = map[string]bool{"success": true, "completed": true, "paid": true}
	pendingValues = map[string]bool{"pending": true}
	failedValues  = map[string]bool{
		"failed":    true,
		"failure":   true,
		"declined":  true,
		"cancelled": true,
		"canceled":  true,
		"error":     true,
		"expired":   true,
	}
)

// Normalize classifies a gateway response. Checks run in order: an explicit
// success flag or success status, then pending, then the known failure
// vocabulary. Status text is compared case-insensitively; anything else is
// StatusUnknown.
func Normalize(gs GatewayStatus) Status {
	status := strings.ToLower(strings.TrimSpace(gs.Status))
	switch {
	case gs.Success != nil && *gs.Success, successValues[status]:
		return StatusSuccess
	case pendingValues[status]:
		return StatusPending
	case failedValues[status]:
		return StatusFailed
	default:
		return StatusUnknown
	}
}
