package events

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// SubscriberConfig controls a consumer-group subscription.
type SubscriberConfig struct {
	StreamConfig
	Group         string
	Consumer      string
	Batch         int64         // entries per read
	Block         time.Duration // XREADGROUP block for new entries
	ClaimIdle     time.Duration // reclaim entries idle this long from dead consumers
	MaxDeliveries int64         // dead-letter after this many failed deliveries
	RetryDelay    time.Duration // pause after a failed delivery
	DeadLetter    string        // dead-letter stream, defaults to Prefix+":dlq"
}

func (c *SubscriberConfig) defaults() {
	if c.Partitions < 1 {
		c.Partitions = 1
	}
	if c.Batch <= 0 {
		c.Batch = 16
	}
	if c.Block <= 0 {
		c.Block = 2 * time.Second
	}
	if c.ClaimIdle <= 0 {
		c.ClaimIdle = 30 * time.Second
	}
	if c.MaxDeliveries <= 0 {
		c.MaxDeliveries = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.DeadLetter == "" {
		c.DeadLetter = c.Prefix + ":dlq"
	}
}

// DeadLetterFunc observes entries moved to the dead-letter stream.
type DeadLetterFunc func(stream, id, reason string)

// StreamSubscriber consumes partitioned streams through a consumer group.
//
// Each partition is read by one goroutine, strictly in order: a failed entry is
// retried from this consumer's pending list before anything newer is read, so
// events for one resource are never overtaken. Entries are acknowledged only
// after the handler succeeds or the entry is dead-lettered.
type StreamSubscriber struct {
	client rueidis.Client
	cfg    SubscriberConfig
	log    *zap.Logger
	onDead DeadLetterFunc
}

// NewStreamSubscriber constructs a subscriber. onDead may be nil.
func NewStreamSubscriber(client rueidis.Client, cfg SubscriberConfig, log *zap.Logger, onDead DeadLetterFunc) *StreamSubscriber {
	cfg.defaults()
	if onDead == nil {
		onDead = func(string, string, string) {}
	}
	return &StreamSubscriber{client: client, cfg: cfg, log: log, onDead: onDead}
}

// Run blocks until ctx is done, dispatching every entry to h.
func (s *StreamSubscriber) Run(ctx context.Context, h Handler) error {
	streams := StreamKeys(s.cfg.Prefix, s.cfg.Partitions)
	for _, stream := range streams {
		if err := s.ensureGroup(ctx, stream); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	for _, stream := range streams {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.consume(ctx, stream, h)
		}()
	}
	wg.Wait()
	return nil
}

func (s *StreamSubscriber) ensureGroup(ctx context.Context, stream string) error {
	cmd := s.client.B().XgroupCreate().Key(stream).Group(s.cfg.Group).Id("0").Mkstream().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil && !rueidis.IsRedisBusyGroup(err) {
		return err
	}
	return nil
}

// consume runs the read loop for one partition. The cursor starts at "0" so
// entries left pending by a previous run are finished first.
func (s *StreamSubscriber) consume(ctx context.Context, stream string, h Handler) {
	log := s.log.With(zap.String("stream", stream))
	cursor := "0"
	var lastClaim time.Time
	failures := map[string]int64{}

	for ctx.Err() == nil {
		if time.Since(lastClaim) >= s.cfg.ClaimIdle {
			lastClaim = time.Now()
			if n := s.reclaim(ctx, stream); n > 0 {
				log.Info("reclaimed idle entries", zap.Int("count", n))
				cursor = "0"
			}
		}

		entries, err := s.read(ctx, stream, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("read failed", zap.Error(err))
			sleep(ctx, s.cfg.RetryDelay)
			continue
		}
		if cursor == "0" && len(entries) == 0 {
			cursor = ">"
			continue
		}

		for _, e := range entries {
			if !s.handle(ctx, log, stream, e, h, failures) {
				cursor = "0"
				sleep(ctx, s.cfg.RetryDelay)
				break
			}
		}
	}
}

func (s *StreamSubscriber) read(ctx context.Context, stream, cursor string) ([]rueidis.XRangeEntry, error) {
	var cmd rueidis.Completed
	if cursor == ">" {
		cmd = s.client.B().Xreadgroup().Group(s.cfg.Group, s.cfg.Consumer).
			Count(s.cfg.Batch).
			Block(s.cfg.Block.Milliseconds()).
			Streams().Key(stream).Id(cursor).Build()
	} else {
		cmd = s.client.B().Xreadgroup().Group(s.cfg.Group, s.cfg.Consumer).
			Count(s.cfg.Batch).
			Streams().Key(stream).Id(cursor).Build()
	}
	res, err := s.client.Do(ctx, cmd).AsXRead()
	if rueidis.IsRedisNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res[stream], nil
}

// handle processes one entry and reports whether the partition may move on.
// failures counts local attempts per entry id, in case the group's delivery
// counter lags behind.
func (s *StreamSubscriber) handle(ctx context.Context, log *zap.Logger, stream string, e rueidis.XRangeEntry, h Handler, failures map[string]int64) bool {
	ev, err := decodeEntry(e)
	if err != nil {
		return s.deadLetter(ctx, log, stream, e, err.Error())
	}

	if err := h(ctx, ev); err != nil {
		if ctx.Err() != nil {
			return false
		}
		failures[e.ID]++
		n := max(s.deliveries(ctx, stream, e.ID), failures[e.ID])
		if n >= s.cfg.MaxDeliveries {
			if s.deadLetter(ctx, log, stream, e, err.Error()) {
				delete(failures, e.ID)
				return true
			}
			return false
		}
		log.Warn("handler failed, will retry",
			zap.String("id", e.ID),
			zap.String("type", string(ev.Type)),
			zap.String("resource", ev.ResourceID),
			zap.Int64("deliveries", n),
			zap.Error(err),
		)
		return false
	}

	delete(failures, e.ID)
	s.ack(ctx, log, stream, e.ID)
	return true
}

// deliveries returns the group's delivery count for id, or 0 if unknown.
func (s *StreamSubscriber) deliveries(ctx context.Context, stream, id string) int64 {
	cmd := s.client.B().Xpending().Key(stream).Group(s.cfg.Group).Start(id).End(id).Count(1).Build()
	rows, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil || len(rows) == 0 {
		return 0
	}
	fields, err := rows[0].ToArray()
	if err != nil || len(fields) < 4 {
		return 0
	}
	n, err := fields[3].AsInt64()
	if err != nil {
		return 0
	}
	return n
}

// deadLetter copies e to the dead-letter stream and acknowledges it. If the copy
// fails the entry stays pending and the partition does not advance.
func (s *StreamSubscriber) deadLetter(ctx context.Context, log *zap.Logger, stream string, e rueidis.XRangeEntry, reason string) bool {
	cmd := s.client.B().Xadd().Key(s.cfg.DeadLetter).Id("*").
		FieldValue().FieldValue("stream", stream).
		FieldValue("id", e.ID).
		FieldValue("reason", reason).
		FieldValue(fieldPayload, e.FieldValues[fieldPayload]).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		log.Error("dead-letter write failed", zap.String("id", e.ID), zap.Error(err))
		return false
	}
	log.Error("entry dead-lettered", zap.String("id", e.ID), zap.String("reason", reason))
	s.onDead(stream, e.ID, reason)
	s.ack(ctx, log, stream, e.ID)
	return true
}

// ack failures are logged only: the entry will be redelivered and handlers are idempotent.
func (s *StreamSubscriber) ack(ctx context.Context, log *zap.Logger, stream, id string) {
	cmd := s.client.B().Xack().Key(stream).Group(s.cfg.Group).Id(id).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		log.Warn("ack failed", zap.String("id", id), zap.Error(err))
	}
}

// reclaim moves entries idle longer than ClaimIdle (left by crashed consumers)
// into this consumer's pending list and returns how many were taken.
func (s *StreamSubscriber) reclaim(ctx context.Context, stream string) int {
	cmd := s.client.B().Xautoclaim().Key(stream).Group(s.cfg.Group).Consumer(s.cfg.Consumer).
		MinIdleTime(strconv.FormatInt(s.cfg.ClaimIdle.Milliseconds(), 10)).
		Start("0-0").Count(s.cfg.Batch).Build()
	arr, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil || len(arr) < 2 {
		return 0
	}
	claimed, err := arr[1].AsXRange()
	if err != nil {
		return 0
	}
	return len(claimed)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
