package editor

import "sync"

type EventType string

const (
	EventPlayheadChanged         EventType = "playhead_changed"
	EventClipSelectionChanged    EventType = "clip_selection_changed"
	EventOverlaySelectionChanged EventType = "overlay_selection_changed"
	EventTimelineModified        EventType = "timeline_modified"
	EventScrubStarted            EventType = "scrub_started"
	EventScrubEnded              EventType = "scrub_ended"
)

// Event is a one-way notification to renderers. TimelineModified carries no
// payload beyond the revision; consumers re-read the timeline.
type Event struct {
	Type      EventType `json:"type"`
	Revision  int64     `json:"revision"`
	Frame     int       `json:"frame,omitempty"`
	ClipID    string    `json:"clip_id,omitempty"`
	OverlayID string    `json:"overlay_id,omitempty"`
}

type Listener func(Event)

// Bus fans events out to subscribers. Listeners run on the publishing
// goroutine, after the engine has released its lock, so they may call back
// into the engine.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	b.mu.RLock()
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.RUnlock()

	for _, ev := range events {
		for _, l := range ls {
			l(ev)
		}
	}
}
