package counter

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// WebhookCounter counts webhook outcomes in a Redis hash, one field per
// outcome. A nil counter or client records nothing.
type WebhookCounter struct {
	client *redis.Client
	key    string
}

func NewWebhookCounter(client *redis.Client) *WebhookCounter {
	return &WebhookCounter{client: client, key: webhookOutcomesKey}
}

// Record increments the counter for outcome.
func (c *WebhookCounter) Record(ctx context.Context, outcome string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.HIncrBy(ctx, c.key, outcome, 1).Err()
}

// Snapshot returns the current counts without resetting them.
func (c *WebhookCounter) Snapshot(ctx context.Context) (map[string]int64, error) {
	if c == nil || c.client == nil {
		return map[string]int64{}, nil
	}
	data, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, err
	}
	return parseCounts(data), nil
}

func parseCounts(data map[string]string) map[string]int64 {
	out := make(map[string]int64, len(data))
	for k, v := range data {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}
