// Package events publishes board notifications to a message broker.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names an event. It doubles as the RabbitMQ routing key and, with the
// channel prefix, as the Redis channel.
type Type string

const (
	JobCreated         Type = "job.created"
	JobDeleted         Type = "job.deleted"
	JobClosed          Type = "job.closed"
	ApplicationCreated Type = "application.created"
)

// Event is the JSON payload of every notification.
type Event struct {
	Type   Type      `json:"type"`
	JobID  string    `json:"jobId"`
	UserID string    `json:"userId,omitempty"`
	At     time.Time `json:"at"`
}

// New stamps an event with the current time.
func New(t Type, jobID, userID string) Event {
	return Event{Type: t, JobID: jobID, UserID: userID, At: time.Now().UTC()}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
