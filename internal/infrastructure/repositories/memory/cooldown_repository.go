package memory

import (
	"context"
	"sync"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
)

// CooldownRepository keeps per-recipient delivery times in process memory.
// Entries live for the process lifetime.
type CooldownRepository struct {
	window time.Duration

	mu        sync.Mutex
	delivered map[domain.RecipientID]time.Time
	inFlight  map[domain.RecipientID]struct{}
}

var _ ports.CooldownStore = (*CooldownRepository)(nil)

func NewCooldownRepository(window time.Duration) *CooldownRepository {
	return &CooldownRepository{
		window:    window,
		delivered: make(map[domain.RecipientID]time.Time),
		inFlight:  make(map[domain.RecipientID]struct{}),
	}
}

func (r *CooldownRepository) TryAdmit(ctx context.Context, recipient domain.RecipientID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.inFlight[recipient]; busy {
		return false, nil
	}
	if last, ok := r.delivered[recipient]; ok && now.Sub(last) < r.window {
		return false, nil
	}

	r.inFlight[recipient] = struct{}{}
	return true, nil
}

func (r *CooldownRepository) Record(ctx context.Context, recipient domain.RecipientID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delivered[recipient] = now
	delete(r.inFlight, recipient)
	return nil
}

func (r *CooldownRepository) Release(ctx context.Context, recipient domain.RecipientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inFlight, recipient)
	return nil
}

func (r *CooldownRepository) HealthCheck(ctx context.Context) error {
	return nil
}

// LastDelivery returns the recorded delivery time for recipient.
func (r *CooldownRepository) LastDelivery(recipient domain.RecipientID) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.delivered[recipient]
	return t, ok
}
