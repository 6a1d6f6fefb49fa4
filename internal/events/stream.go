package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/rueidis"
)

// Entry field names on the stream.
const (
	fieldKey     = "key"
	fieldType    = "event_type"
	fieldPayload = "payload"
)

// StreamConfig locates the partitioned streams.
type StreamConfig struct {
	Prefix     string // e.g. "catalog:product-events"
	Partitions int
}

// StreamPublisher appends events to Redis Streams, one stream per partition.
type StreamPublisher struct {
	client rueidis.Client
	cfg    StreamConfig
}

var _ Publisher = (*StreamPublisher)(nil)

// NewStreamPublisher constructs a publisher over client.
func NewStreamPublisher(client rueidis.Client, cfg StreamConfig) *StreamPublisher {
	if cfg.Partitions < 1 {
		cfg.Partitions = 1
	}
	return &StreamPublisher{client: client, cfg: cfg}
}

// Publish XADDs ev to the stream owning its resource id.
func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.ResourceID == "" {
		return errors.New("publish: empty resource id")
	}
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	key := StreamKey(p.cfg.Prefix, Partition(ev.ResourceID, p.cfg.Partitions))
	cmd := p.client.B().Xadd().Key(key).Id("*").
		FieldValue().FieldValue(fieldKey, ev.ResourceID).
		FieldValue(fieldType, string(ev.Type)).
		FieldValue(fieldPayload, string(payload)).
		Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Type, key, err)
	}
	return nil
}

// decodeEntry turns a stream entry back into an Event.
func decodeEntry(e rueidis.XRangeEntry) (Event, error) {
	payload, ok := e.FieldValues[fieldPayload]
	if !ok {
		return Event{}, fmt.Errorf("entry %s: no %s field", e.ID, fieldPayload)
	}
	ev, err := Decode([]byte(payload))
	if err != nil {
		return Event{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	if k, ok := e.FieldValues[fieldKey]; ok && k != ev.ResourceID {
		return Event{}, fmt.Errorf("entry %s: key %q does not match resource %q", e.ID, k, ev.ResourceID)
	}
	return ev, nil
}
