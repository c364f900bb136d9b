package reminder

import (
	"context"
	"log"
	"sync"
)

// LogNotifier writes reminders to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID int64, text string) error {
	log.Printf("Reminder for %d: %s", userID, text)
	return nil
}

// Outbox queues reminders per participant until the transport drains them.
type Outbox struct {
	mu      sync.Mutex
	pending map[int64][]string
}

func NewOutbox() *Outbox {
	return &Outbox{pending: make(map[int64][]string)}
}

func (o *Outbox) Notify(_ context.Context, userID int64, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[userID] = append(o.pending[userID], text)
	return nil
}

// Drain returns and forgets the messages queued for userID.
func (o *Outbox) Drain(userID int64) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.pending[userID]
	delete(o.pending, userID)
	return msgs
}

// Fanout delivers to every notifier and returns the first error.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, userID int64, text string) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, userID, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
