package watch

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, d *Debouncer) FileEvent {
	t.Helper()
	select {
	case event := <-d.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced event")
		return FileEvent{}
	}
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(50)
	defer d.Stop()

	// A file copy surfaces as a create followed by several writes.
	d.Add("a.txt", "/tmp/a.txt", EventCreate)
	d.Add("a.txt", "/tmp/a.txt", EventModify)
	d.Add("a.txt", "/tmp/a.txt", EventModify)

	event := waitForEvent(t, d)
	assert.Equal(t, "a.txt", event.RelPath)
	assert.Equal(t, EventCreate, event.EventType, "create followed by writes stays a create")

	select {
	case extra := <-d.Events():
		t.Fatalf("unexpected second event: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncerSeparatePaths(t *testing.T) {
	d := NewDebouncer(20)
	defer d.Stop()

	d.Add("a.txt", "/tmp/a.txt", EventModify)
	d.Add("b.txt", "/tmp/b.txt", EventModify)
	assert.Equal(t, 2, d.PendingCount())

	seen := map[string]bool{}
	seen[waitForEvent(t, d).RelPath] = true
	seen[waitForEvent(t, d).RelPath] = true
	assert.True(t, seen["a.txt"] && seen["b.txt"])
	assert.Equal(t, 0, d.PendingCount())
}

func TestDebouncerDropCancelsPending(t *testing.T) {
	d := NewDebouncer(50)
	defer d.Stop()

	d.Add("a.txt", "/tmp/a.txt", EventCreate)
	d.Drop("a.txt")
	require.Equal(t, 0, d.PendingCount())

	select {
	case event := <-d.Events():
		t.Fatalf("dropped path still emitted: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncerStopDiscardsAndCloses(t *testing.T) {
	d := NewDebouncer(10 * 1000)

	d.Add("a.txt", "/tmp/a.txt", EventModify)
	d.Stop()

	assert.Equal(t, 0, d.PendingCount())

	_, open := <-d.Events()
	assert.False(t, open, "output channel closes on stop")
}

func TestDebouncerStopDuringEmits(t *testing.T) {
	// Zero delay makes the timers fire while Stop runs; every emit must
	// either deliver before the channel closes or be discarded.
	for i := 0; i < 100; i++ {
		d := NewDebouncer(0)
		for j := 0; j < 20; j++ {
			d.Add(fmt.Sprintf("f%d.txt", j), "/tmp/f", EventModify)
		}
		d.Stop()

		for range d.Events() {
		}
		assert.Equal(t, 0, d.PendingCount())
	}
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "CREATE", EventCreate.String())
	assert.Equal(t, "MODIFY", EventModify.String())
	assert.Equal(t, "UNKNOWN", EventType(99).String())
}
