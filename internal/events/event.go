// Package events defines catalog lifecycle events and the channel that carries them
// from the catalog service to its subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FredericTischler/safe-zone/internal/model"
)

// Kind names a lifecycle transition.
type Kind string

// Lifecycle kinds. Consumers must tolerate kinds not listed here.
const (
	KindCreated Kind = "CREATED"
	KindUpdated Kind = "UPDATED"
	KindDeleted Kind = "DELETED"
)

// Event is the lifecycle notification emitted after a catalog mutation commits.
type Event struct {
	Type         Kind      `json:"eventType"`
	ResourceID   string    `json:"resourceId"`
	ResourceName string    `json:"resourceName"`
	OwnerID      string    `json:"ownerId"`
	Timestamp    time.Time `json:"timestamp"`
}

// ForProduct builds the event for a product snapshot taken after (or, for deletes, before) the mutation.
func ForProduct(kind Kind, p model.Product, at time.Time) Event {
	return Event{
		Type:         kind,
		ResourceID:   p.ID,
		ResourceName: p.Name,
		OwnerID:      p.OwnerID,
		Timestamp:    at.UTC(),
	}
}

// Encode returns the JSON wire form.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses the JSON wire form. Type and resource id are mandatory.
func Decode(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" || e.ResourceID == "" {
		return Event{}, errors.New("decode event: missing eventType or resourceId")
	}
	return e, nil
}

// Publisher accepts events for durable, keyed delivery.
type Publisher interface {
	// Publish returns once the channel has durably accepted ev.
	Publish(ctx context.Context, ev Event) error
}

// Handler processes one delivered event. A non-nil error leaves the event unacknowledged.
type Handler func(ctx context.Context, ev Event) error
