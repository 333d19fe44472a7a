package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	t.Cleanup(d.Close)

	d.Emit(context.Background(), Event{EventType: "login", UserID: "user-1", Success: true})

	select {
	case event := <-sink.Events():
		if event.EventType != "login" || event.UserID != "user-1" || !event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("event never reached the sink")
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}
	// Nil dispatcher is safe to use.
	d.Emit(context.Background(), Event{EventType: "login"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports zero drops")
	}
}

func TestDispatcherCountsDrops(t *testing.T) {
	// A blocking sink with a one-slot buffer forces backpressure.
	blocked := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-blocked })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), Event{EventType: "login"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops under backpressure")
	}

	close(blocked)
	d.Close()
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "refresh_rotated", Success: true})
	}
	d.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 events after drain, got %d", len(lines))
	}
	var event Event
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("sink output is not JSON lines: %v", err)
	}
	if event.EventType != "refresh_rotated" {
		t.Fatalf("unexpected event type %q", event.EventType)
	}
}

func TestEmitAfterCloseIsNoOp(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "login"})

	select {
	case event := <-sink.Events():
		t.Fatalf("unexpected event after close: %+v", event)
	default:
	}
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
