package ports

import (
	"context"
	"time"

	"nowplaying/internal/core/domain"
)

// CooldownStore gates deliveries per recipient.
//
// TryAdmit reserves the recipient when it is admitted; a second TryAdmit for the
// same recipient is refused until the reservation is settled with Record (after a
// successful delivery) or Release (nothing was delivered).
type CooldownStore interface {
	TryAdmit(ctx context.Context, recipient domain.RecipientID, now time.Time) (bool, error)
	Record(ctx context.Context, recipient domain.RecipientID, now time.Time) error
	Release(ctx context.Context, recipient domain.RecipientID) error
	HealthCheck(ctx context.Context) error
}
