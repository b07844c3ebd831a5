package domain

import "time"

// RecipientID identifies the chat partner a status is delivered to.
type RecipientID string

// StatusRequest is one inbound "status requested by R at T" event from the front relay.
type StatusRequest struct {
	RequestID   string
	RecipientID RecipientID
	RequestedAt time.Time
}

// Outcome describes what happened to a single status request.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeSuppressed
	OutcomeSilent
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeSilent:
		return "silent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
