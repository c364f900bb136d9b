// Package reminder delivers plan notifications when their notification
// time arrives.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"household-ledger/internal/format"
	"household-ledger/internal/models"
)

// Source lists today's plans that want a notification.
type Source interface {
	TodayReminders(ctx context.Context) ([]models.Reminder, error)
}

// Notifier delivers one message to a participant.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Config holds configuration for the scheduler.
type Config struct {
	Interval     time.Duration
	Location     *time.Location
	Participants []int64
	Now          func() time.Time
}

// Scheduler polls the source and notifies each plan once per day.
type Scheduler struct {
	source       Source
	notifier     Notifier
	interval     time.Duration
	loc          *time.Location
	participants []int64
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	day  string
	sent map[int64]bool

	delivered metric.Int64Counter
}

// NewScheduler creates a scheduler. Zero config fields get defaults: one
// minute interval, UTC, time.Now.
func NewScheduler(source Source, notifier Notifier, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	delivered, err := otel.Meter("household-ledger/reminder").Int64Counter("reminders.delivered",
		metric.WithDescription("Reminder messages delivered"))
	if err != nil {
		log.Printf("Scheduler: counter: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		source:       source,
		notifier:     notifier,
		interval:     cfg.Interval,
		loc:          cfg.Location,
		participants: cfg.Participants,
		now:          cfg.Now,
		ctx:          ctx,
		cancel:       cancel,
		sent:         make(map[int64]bool),
		delivered:    delivered,
	}
}

// Start launches the polling loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	log.Printf("Scheduler: reminders started, checking every %s", s.interval)
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Println("Scheduler: reminders stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(s.ctx, s.interval)
			if _, err := s.RunOnce(ctx); err != nil {
				log.Printf("Scheduler: reminder run failed: %v", err)
			}
			cancel()
		}
	}
}

// RunOnce sends every reminder that is due and not yet sent today. It
// returns the number of plans notified.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	today := now.Format(models.DateLayout)
	clock := now.Format(models.TimeLayout)

	reminders, err := s.source.TodayReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.day != today {
		s.day = today
		clear(s.sent)
	}

	notified := 0
	for _, r := range reminders {
		p := r.Plan
		if s.sent[p.ID] || p.NotificationTime == nil || *p.NotificationTime > clock {
			continue
		}
		text := format.Reminder(p)
		failed := false
		for _, userID := range s.recipients(p) {
			if err := s.notifier.Notify(ctx, userID, text); err != nil {
				log.Printf("Scheduler: notify %d about plan %d: %v", userID, p.ID, err)
				failed = true
				continue
			}
			if s.delivered != nil {
				s.delivered.Add(ctx, 1)
			}
		}
		if failed {
			continue
		}
		s.sent[p.ID] = true
		notified++
		log.Printf("Scheduler: reminded %s about plan %d at %s", r.Username, p.ID, clock)
	}
	return notified, nil
}

// recipients is the owner, plus every other participant for shared plans.
func (s *Scheduler) recipients(p models.Plan) []int64 {
	out := []int64{p.UserID}
	if !p.Shared {
		return out
	}
	for _, id := range s.participants {
		if id != p.UserID {
			out = append(out, id)
		}
	}
	return out
}
