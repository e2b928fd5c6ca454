package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// Event names sent over the session stream.
const (
	EventView       = "view"
	EventHighlight  = "highlight"
	EventClear      = "clear"
	EventCollapse   = "collapse"
	EventTransition = "transition"
)

// Event is one renderer callback, ready for the wire.
type Event struct {
	Name string
	Data string
}

// StreamManager fans renderer events out to SSE subscribers of a session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for sessionID. Call the returned func to leave.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 64)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers returns how many streams follow sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast never blocks: a full subscriber misses the event.
func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE client buffer full, dropping event", "session_id", sessionID, "event", ev.Name)
		}
	}
}

// Renderer returns a session renderer that publishes on the stream of sessionID.
func (sm *StreamManager) Renderer(sessionID string) ports.Renderer {
	return &streamRenderer{id: sessionID, streams: sm}
}

type streamRenderer struct {
	id      string
	streams *StreamManager
}

func (r *streamRenderer) publish(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.streams.logger.Error("Failed to encode stream event", "event", name, "err", err)
		return
	}
	r.streams.Broadcast(r.id, Event{Name: name, Data: string(data)})
}

func (r *streamRenderer) Render(view domain.View) {
	r.publish(EventView, view)
}

func (r *streamRenderer) Highlight(id string) {
	r.publish(EventHighlight, map[string]string{"id": id})
}

func (r *streamRenderer) ClearHighlight() {
	r.publish(EventClear, struct{}{})
}

func (r *streamRenderer) Collapse(id string) {
	r.publish(EventCollapse, map[string]string{"id": id})
}

func (r *streamRenderer) Transition(phase, style string) {
	r.publish(EventTransition, map[string]string{"phase": phase, "style": style})
}

var (
	_ ports.Renderer           = (*streamRenderer)(nil)
	_ ports.TransitionObserver = (*streamRenderer)(nil)
)
