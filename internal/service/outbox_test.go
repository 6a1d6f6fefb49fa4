package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/model"
)

func outboxWith(kinds ...events.Kind) *fakeOutbox {
	ob := &fakeOutbox{}
	for _, k := range kinds {
		ob.add(events.Event{Type: k, ResourceID: "p-1", ResourceName: "Lamp", OwnerID: "seller-a", Timestamp: time.Unix(0, 0).UTC()})
	}
	return ob
}

func TestOutboxRelay_PublishesInOrderAndMarks(t *testing.T) {
	t.Parallel()
	ob := outboxWith(events.KindCreated, events.KindUpdated, events.KindDeleted)
	pub := &recPublisher{}
	r := NewOutboxRelay(ob, pub, zaptest.NewLogger(t))

	n, err := r.ProcessPending(context.Background(), 10)
	if err != nil || n != 3 {
		t.Fatalf("ProcessPending: n=%d err=%v", n, err)
	}
	got := pub.events()
	if len(got) != 3 || got[0].Type != events.KindCreated || got[2].Type != events.KindDeleted {
		t.Fatalf("order broken: %+v", got)
	}
	if n, _ := r.ProcessPending(context.Background(), 10); n != 0 {
		t.Fatalf("rows must be settled, got %d more", n)
	}
}

func TestOutboxRelay_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	ob := outboxWith(events.KindCreated, events.KindDeleted)
	pub := &recPublisher{err: errBoom}
	r := NewOutboxRelay(ob, pub, zaptest.NewLogger(t))

	n, err := r.ProcessPending(context.Background(), 10)
	if !errors.Is(err, errBoom) || n != 0 {
		t.Fatalf("want boom and 0 settled, got n=%d err=%v", n, err)
	}
	if len(ob.published) != 0 {
		t.Fatalf("nothing may be marked after a failed publish")
	}

	pub.err = nil
	if n, err := r.ProcessPending(context.Background(), 10); err != nil || n != 2 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
}

func TestOutboxRelay_BatchLimit(t *testing.T) {
	t.Parallel()
	ob := outboxWith(events.KindCreated, events.KindUpdated, events.KindUpdated)
	r := NewOutboxRelay(ob, &recPublisher{}, nil)

	if n, _ := r.ProcessPending(context.Background(), 2); n != 2 {
		t.Fatalf("want 2, got %d", n)
	}
	if n, _ := r.ProcessPending(context.Background(), 2); n != 1 {
		t.Fatalf("want 1, got %d", n)
	}
}

func TestOutboxRelay_SkipsUndecodableRow(t *testing.T) {
	t.Parallel()
	ob := &fakeOutbox{rows: []model.OutboxEvent{{ID: 1, AggregateID: "p-1", Payload: []byte("{")}}}
	ob.add(events.Event{Type: events.KindDeleted, ResourceID: "p-1"})
	pub := &recPublisher{}
	r := NewOutboxRelay(ob, pub, zaptest.NewLogger(t))

	n, err := r.ProcessPending(context.Background(), 10)
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if got := pub.events(); len(got) != 1 || got[0].Type != events.KindDeleted {
		t.Fatalf("bad publish: %+v", got)
	}
}

func TestOutboxRelay_RepoErrors(t *testing.T) {
	t.Parallel()
	ob := outboxWith(events.KindCreated)
	ob.unpubErr = errBoom
	r := NewOutboxRelay(ob, &recPublisher{}, nil)
	if _, err := r.ProcessPending(context.Background(), 10); !errors.Is(err, errBoom) {
		t.Fatalf("want unpublished error, got %v", err)
	}

	ob.unpubErr = nil
	ob.markErr = errors.New("mark-fail")
	if _, err := r.ProcessPending(context.Background(), 10); err == nil {
		t.Fatalf("want mark error")
	}
}

func TestOutboxRelay_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	ob := outboxWith(events.KindCreated)
	pub := &recPublisher{}
	r := NewOutboxRelay(ob, pub, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond, 10)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.events()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
	if len(pub.events()) != 1 {
		t.Fatalf("want 1 published, got %d", len(pub.events()))
	}
}
