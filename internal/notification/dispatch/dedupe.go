package dispatch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"nyaya/internal/notification/models"
)

const dedupeKeyPrefix = "notify:sent:"

// DefaultDedupeTTL outlives the 72-hour signature window with margin.
const DefaultDedupeTTL = 7 * 24 * time.Hour

// Deduping suppresses a second delivery of the same dedupe key across
// processes. It claims the key with SET NX before sending and releases it if
// the send fails so a later retry can claim it again.
type Deduping struct {
	next   Dispatcher
	client *redis.Client
	ttl    time.Duration
}

func NewDeduping(next Dispatcher, client *redis.Client, ttl time.Duration) *Deduping {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &Deduping{next: next, client: client, ttl: ttl}
}

func (d *Deduping) Send(ctx context.Context, channel models.Channel, recipient string, payload []byte, dedupeKey string) error {
	key := dedupeKeyPrefix + dedupeKey
	claimed, err := d.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return Retryable(err)
	}
	if !claimed {
		return nil
	}
	if err := d.next.Send(ctx, channel, recipient, payload, dedupeKey); err != nil {
		_ = d.client.Del(context.WithoutCancel(ctx), key).Err()
		return err
	}
	return nil
}
