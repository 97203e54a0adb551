// Package events defines the best-effort event publishing contract used to
// announce entity state transitions to other services. Publish failures are
// logged by callers and never roll back the transition they follow.
package events

import (
	"context"
	"sync"
)

// Publisher delivers a short message to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic, message string) error
}

// Nop discards every message. It is wired when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, string) error {
	return nil
}

// Record is one published topic/message pair.
type Record struct {
	Topic   string
	Message string
}

// Recorder captures published messages in memory for tests.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, topic, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Topic: topic, Message: message})
	return nil
}

// Records returns a copy of everything published so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
