// Package dedup filters retried webhook deliveries. Twilio re-posts a
// webhook when it does not get a timely 2xx; replaying a "yes" through
// the setup machine would advance the conversation twice, so each
// MessageSid is handled at most once per TTL window.
package dedup

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Seen marks the id as handled and reports whether it had been seen
// already. Fails open: if Redis is unavailable the message is treated
// as new, which at worst repeats an idempotent re-ask.
func (d *RedisDeduper) Seen(ctx context.Context, id string) bool {
	if d == nil || d.client == nil || id == "" {
		return false
	}
	ok, err := d.client.SetNX(ctx, "sms:inbound:"+id, 1, d.ttl).Result()
	if err != nil {
		log.Printf("⚠️  Dedup check failed for %s: %v", id, err)
		return false
	}
	return !ok
}
