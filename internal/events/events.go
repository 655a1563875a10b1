// Package events carries display updates from the engine to whatever is
// rendering the game.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TypeView               = "view"
	TypeTimer              = "timer"
	TypePenalty            = "penalty"
	TypeHint               = "hint"
	TypeBonus              = "bonus"
	TypeFeedback           = "feedback"
	TypeAccessCodeRequired = "access_code_required"
	TypeResult             = "result"
	TypeReset              = "reset"
)

type Event struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Stage int    `json:"stage"`
	Phase int    `json:"phase,omitempty"`
	Text  string `json:"text,omitempty"`
	// Kind classifies feedback: success, warning or error.
	Kind  string    `json:"kind,omitempty"`
	First bool      `json:"first,omitempty"`
	At    time.Time `json:"at"`
}

// New stamps an event with an id and the current time.
func New(typ string, stage int) Event {
	return Event{ID: uuid.NewString(), Type: typ, Stage: stage, At: time.Now().UTC()}
}

// Sink receives display updates.
type Sink interface {
	Publish(Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// Recorder keeps every published event. Useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns recorded events with the given type.
func (r *Recorder) OfType(typ string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Broker is an in-process pub/sub fanning JSON-encoded events out to
// every subscriber.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

var _ Sink = (*Broker)(nil)

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan []byte]struct{})}
}

// Subscribe returns a channel that receives JSON-encoded events.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(e Event) {
	data, _ := json.Marshal(e)
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Fanout publishes to several sinks.
type Fanout []Sink

func (f Fanout) Publish(e Event) {
	for _, s := range f {
		s.Publish(e)
	}
}

// Log writes each event to a logger at debug level.
type Log struct{ Logger *slog.Logger }

func (l Log) Publish(e Event) {
	l.Logger.Debug("event", "id", e.ID, "type", e.Type, "stage", e.Stage, "phase", e.Phase)
}
