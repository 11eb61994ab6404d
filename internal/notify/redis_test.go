package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/eventoo/internal/simulator"
)

func newPublisher(t *testing.T) (*Publisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPublisher(client, "test:events"), client
}

func sampleEvents() []simulator.Event {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []simulator.Event{
		{Seq: 1, Type: simulator.EventChallengeReady, PlanID: "p1", At: at, ChallengeID: 1, Message: "ready"},
		{Seq: 2, Type: simulator.EventChallengeStarted, PlanID: "p1", At: at.Add(24 * time.Hour), ChallengeID: 1, Message: "started"},
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub, client := newPublisher(t)
	sub := client.Subscribe(ctx, pub.Channel(), pub.PlanChannel("p1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, sampleEvents()))

	got := map[string][]simulator.Event{}
	for range 4 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var ev simulator.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		got[msg.Channel] = append(got[msg.Channel], ev)
	}

	require.Len(t, got["test:events"], 2)
	require.Len(t, got["test:events:p1"], 2)
	assert.Equal(t, simulator.EventChallengeReady, got["test:events"][0].Type)
	assert.Equal(t, int64(2), got["test:events"][1].Seq)
}

func TestRecentKeepsLatestInOrder(t *testing.T) {
	ctx := context.Background()
	pub, _ := newPublisher(t)

	require.NoError(t, pub.Publish(ctx, sampleEvents()))
	require.NoError(t, pub.Publish(ctx, nil))

	recent, err := pub.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(1), recent[0].Seq)
	assert.Equal(t, int64(2), recent[1].Seq)

	one, err := pub.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, int64(2), one[0].Seq)
}

func TestDialRejectsBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "not-a-url", "")
	assert.Error(t, err)
}

func TestDialMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := Dial(context.Background(), "redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	defer pub.Close()
	assert.Equal(t, "eventoo:events", pub.Channel())
}
