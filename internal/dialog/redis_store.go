package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"todo-list.com/todo-list/internal/wizard"
)

// RedisStore keeps conversations as JSON strings so that several bot
// processes can share them.
type RedisStore struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client rueidis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(handle int64) string {
	return r.prefix + ":dialog:" + strconv.FormatInt(handle, 10)
}

func (r *RedisStore) Load(ctx context.Context, handle int64) (*wizard.Conversation, error) {
	cmd := r.client.B().Get().Key(r.key(handle)).Build()
	raw, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load conversation %d: %w", handle, err)
	}

	var conv wizard.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %d: %w", handle, err)
	}
	return &conv, nil
}

func (r *RedisStore) Save(ctx context.Context, conv wizard.Conversation) error {
	if conv.Handle == 0 {
		return ErrInvalidHandle
	}

	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation %d: %w", conv.Handle, err)
	}

	set := r.client.B().Set().Key(r.key(conv.Handle)).Value(rueidis.BinaryString(raw))
	var cmd rueidis.Completed
	if r.ttl >= time.Second {
		cmd = set.ExSeconds(int64(r.ttl / time.Second)).Build()
	} else {
		cmd = set.Build()
	}
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisStore) Delete(ctx context.Context, handle int64) error {
	cmd := r.client.B().Del().Key(r.key(handle)).Build()
	return r.client.Do(ctx, cmd).Error()
}
