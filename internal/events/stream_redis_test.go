package events

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Runs against a real Redis when EVENTS_TEST_REDIS_ADDR is set.
func newRedis(t *testing.T) rueidis.Client {
	t.Helper()
	addr := os.Getenv("EVENTS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EVENTS_TEST_REDIS_ADDR not set")
	}
	c, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestStream_PublishConsumeRetryDeadLetter(t *testing.T) {
	client := newRedis(t)
	prefix := "test:events:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() {
		keys := append(StreamKeys(prefix, 2), prefix+":dlq")
		_ = client.Do(context.Background(), client.B().Del().Key(keys...).Build()).Error()
	})

	pub := NewStreamPublisher(client, StreamConfig{Prefix: prefix, Partitions: 2})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	for i, id := range []string{"ok-1", "flaky", "poison", "ok-2"} {
		ev := Event{Type: KindDeleted, ResourceID: id, Timestamp: time.Now().Add(time.Duration(i))}
		require.NoError(t, pub.Publish(ctx, ev))
	}

	var (
		mu       sync.Mutex
		handled  = map[string]int{}
		deadIDs  []string
		flakyErr = errors.New("transient")
	)
	sub := NewStreamSubscriber(client, SubscriberConfig{
		StreamConfig:  StreamConfig{Prefix: prefix, Partitions: 2},
		Group:         "media",
		Consumer:      "c1",
		Block:         100 * time.Millisecond,
		RetryDelay:    10 * time.Millisecond,
		MaxDeliveries: 3,
	}, zaptest.NewLogger(t), func(_, id, _ string) {
		mu.Lock()
		deadIDs = append(deadIDs, id)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		_ = sub.Run(ctx, func(_ context.Context, ev Event) error {
			mu.Lock()
			defer mu.Unlock()
			handled[ev.ResourceID]++
			switch {
			case ev.ResourceID == "flaky" && handled[ev.ResourceID] < 2:
				return flakyErr
			case ev.ResourceID == "poison":
				return errors.New("always fails")
			}
			return nil
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled["ok-1"] >= 1 && handled["ok-2"] >= 1 && handled["flaky"] >= 2 && len(deadIDs) == 1
	}, 15*time.Second, 50*time.Millisecond)

	cancel()
	<-done

	n, err := client.Do(context.Background(), client.B().Xlen().Key(prefix+":dlq").Build()).AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
