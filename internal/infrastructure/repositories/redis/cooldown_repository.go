package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/distributed"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "nowplaying:"

// CooldownRepository stores the last delivery time per recipient in Redis so
// several bot instances share one cooldown. Admission holds a TTL-bounded
// reservation lock until the request is settled.
type CooldownRepository struct {
	client *redis.Client
	locks  *distributed.LockManager
	window time.Duration
	ttl    time.Duration

	mu   sync.Mutex
	held map[domain.RecipientID]*distributed.DistributedLock
}

var _ ports.CooldownStore = (*CooldownRepository)(nil)

func NewCooldownRepository(client *redis.Client, window, reservationTTL time.Duration) *CooldownRepository {
	return &CooldownRepository{
		client: client,
		locks:  distributed.NewLockManager(client, keyPrefix+"reserve:"),
		window: window,
		ttl:    reservationTTL,
		held:   make(map[domain.RecipientID]*distributed.DistributedLock),
	}
}

func (r *CooldownRepository) lastKey(recipient domain.RecipientID) string {
	return keyPrefix + "cooldown:" + string(recipient)
}

func (r *CooldownRepository) TryAdmit(ctx context.Context, recipient domain.RecipientID, now time.Time) (bool, error) {
	last, found, err := r.lastDelivery(ctx, recipient)
	if err != nil {
		return false, err
	}
	if found && now.Sub(last) < r.window {
		return false, nil
	}

	lock := r.locks.NewLock(string(recipient), r.ttl)
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, nil
	}

	// A peer may have recorded a delivery between the read and the lock.
	last, found, err = r.lastDelivery(ctx, recipient)
	if err != nil || (found && now.Sub(last) < r.window) {
		_ = lock.Unlock(ctx)
		return false, err
	}

	r.mu.Lock()
	r.held[recipient] = lock
	r.mu.Unlock()
	return true, nil
}

func (r *CooldownRepository) lastDelivery(ctx context.Context, recipient domain.RecipientID) (time.Time, bool, error) {
	raw, err := r.client.Get(ctx, r.lastKey(recipient)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get cooldown from Redis: %w", err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid cooldown value %q: %w", raw, err)
	}
	return time.Unix(0, nanos), true, nil
}

func (r *CooldownRepository) Record(ctx context.Context, recipient domain.RecipientID, now time.Time) error {
	// the key only needs to outlive the window
	ttl := r.window
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, r.lastKey(recipient), strconv.FormatInt(now.UnixNano(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown in Redis: %w", err)
	}
	return r.Release(ctx, recipient)
}

func (r *CooldownRepository) Release(ctx context.Context, recipient domain.RecipientID) error {
	r.mu.Lock()
	lock, ok := r.held[recipient]
	delete(r.held, recipient)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return lock.Unlock(ctx)
}

func (r *CooldownRepository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
