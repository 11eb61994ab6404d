// Package notify fans simulator events out to Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/eventoo/internal/simulator"
)

// recentSize caps the replay list kept next to the channel.
const recentSize = 100

// Publisher publishes events as JSON on "<channel>" and "<channel>:<plan id>",
// and keeps the most recent ones in the "<channel>:recent" list.
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher wraps an existing client.
func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = "eventoo:events"
	}
	return &Publisher{client: client, channel: channel}
}

// Dial connects to the Redis server at url (redis://host:port/db) and checks it responds.
func Dial(ctx context.Context, url, channel string) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewPublisher(client, channel), nil
}

// Channel returns the base channel name.
func (p *Publisher) Channel() string { return p.channel }

// PlanChannel returns the per-plan channel name.
func (p *Publisher) PlanChannel(planID string) string { return p.channel + ":" + planID }

func (p *Publisher) recentKey() string { return p.channel + ":recent" }

// Publish sends events in order.
func (p *Publisher) Publish(ctx context.Context, events []simulator.Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := p.client.Pipeline()
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
		pipe.Publish(ctx, p.channel, payload)
		pipe.Publish(ctx, p.PlanChannel(ev.PlanID), payload)
		pipe.LPush(ctx, p.recentKey(), payload)
	}
	pipe.LTrim(ctx, p.recentKey(), 0, recentSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing events: %w", err)
	}
	return nil
}

// Recent returns up to n of the latest published events, oldest first.
func (p *Publisher) Recent(ctx context.Context, n int) ([]simulator.Event, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := p.client.LRange(ctx, p.recentKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]simulator.Event, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var ev simulator.Event
		if err := json.Unmarshal([]byte(raw[i]), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
