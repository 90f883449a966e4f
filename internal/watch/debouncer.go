package watch

import (
	"sync"
	"time"
)

// EventType classifies a debounced file event.
type EventType int

const (
	EventCreate EventType = iota
	EventModify
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "CREATE"
	case EventModify:
		return "MODIFY"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one settled file ready for upload consideration.
type FileEvent struct {
	RelPath   string // slash-separated, relative to the watch root
	AbsPath   string
	EventType EventType
	Timestamp time.Time
}

// Debouncer coalesces the burst of events a file copy produces into a
// single event once the file has settled for the delay window.
type Debouncer struct {
	delay   time.Duration
	events  map[string]*pendingEvent
	mu      sync.Mutex
	output  chan FileEvent
	stopCh  chan struct{}
	stopped bool
	emits   sync.WaitGroup // in-flight emits, drained before output closes
}

type pendingEvent struct {
	event FileEvent
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle delay.
func NewDebouncer(delayMs int) *Debouncer {
	return &Debouncer{
		delay:  time.Duration(delayMs) * time.Millisecond,
		events: make(map[string]*pendingEvent),
		output: make(chan FileEvent, 100),
		stopCh: make(chan struct{}),
	}
}

// Events returns the channel of debounced events.
func (d *Debouncer) Events() <-chan FileEvent {
	return d.output
}

// Add records an event and restarts the settle timer for its path.
// A create followed by writes stays a create.
func (d *Debouncer) Add(relPath, absPath string, eventType EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if pending, exists := d.events[relPath]; exists {
		pending.timer.Stop()
		if pending.event.EventType != EventCreate {
			pending.event.EventType = eventType
		}
		pending.event.Timestamp = time.Now()
		pending.timer = time.AfterFunc(d.delay, func() {
			d.emit(relPath)
		})
		return
	}

	d.events[relPath] = &pendingEvent{
		event: FileEvent{
			RelPath:   relPath,
			AbsPath:   absPath,
			EventType: eventType,
			Timestamp: time.Now(),
		},
		timer: time.AfterFunc(d.delay, func() {
			d.emit(relPath)
		}),
	}
}

// Drop discards any pending event for the path (file was removed).
func (d *Debouncer) Drop(relPath string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pending, exists := d.events[relPath]; exists {
		pending.timer.Stop()
		delete(d.events, relPath)
	}
}

// emit sends a settled event to the output channel. The send is
// registered with the wait group while the lock is held, so Stop can
// drain every in-flight emit before closing the channel.
func (d *Debouncer) emit(relPath string) {
	d.mu.Lock()
	pending, exists := d.events[relPath]
	if exists {
		delete(d.events, relPath)
	}
	if !exists || d.stopped {
		d.mu.Unlock()
		return
	}
	d.emits.Add(1)
	d.mu.Unlock()
	defer d.emits.Done()

	select {
	case d.output <- pending.event:
	case <-d.stopCh:
	}
}

// PendingCount returns the number of events still settling.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// Stop discards pending events and closes the output channel. Emits
// already past the stopped check are waited out first, so the close
// never races a send.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for _, pending := range d.events {
		pending.timer.Stop()
	}
	d.events = make(map[string]*pendingEvent)
	d.mu.Unlock()

	close(d.stopCh)
	d.emits.Wait()
	close(d.output)
}
