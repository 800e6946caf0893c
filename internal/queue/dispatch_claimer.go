package queue

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

// RedisDispatchClaimer grants a per-task claim that expires on its own, so a
// crashed dispatcher cannot block a task for longer than the ttl.
type RedisDispatchClaimer struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDispatchClaimer(client rueidis.Client, keyPrefix string, ttl time.Duration) *RedisDispatchClaimer {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisDispatchClaimer{
		client: client,
		prefix: keyPrefix,
		ttl:    ttl,
	}
}

func (r *RedisDispatchClaimer) key(taskID string) string {
	return r.prefix + ":dispatch:" + taskID
}

// Claim reports whether the caller now holds the claim for taskID.
func (r *RedisDispatchClaimer) Claim(ctx context.Context, taskID string) (bool, error) {
	cmd := r.client.B().Set().Key(r.key(taskID)).Value("1").Nx().PxMilliseconds(r.ttl.Milliseconds()).Build()
	err := r.client.Do(ctx, cmd).Error()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *RedisDispatchClaimer) Release(ctx context.Context, taskID string) error {
	cmd := r.client.B().Del().Key(r.key(taskID)).Build()
	return r.client.Do(ctx, cmd).Error()
}
