package app

import (
	"fmt"
	"log"
	"time"

	"household-ledger/internal/auth"
	"household-ledger/internal/config"
	"household-ledger/internal/conversation"
	"household-ledger/internal/handlers"
	"household-ledger/internal/reminder"
	"household-ledger/internal/session"
	"household-ledger/internal/storage"
)

// Dependencies holds the initialized application components.
type Dependencies struct {
	Config    *config.Config
	DB        *storage.DB
	Household *auth.AllowList
	Engine    *conversation.Engine
	Handlers  *handlers.Handlers
	Outbox    *reminder.Outbox
	Scheduler *reminder.Scheduler
}

// Options overrides process-level collaborators, mainly for tests.
type Options struct {
	Now      func() time.Time
	Notifier reminder.Notifier
}

// New validates cfg and wires storage, the conversation engine, handlers
// and the reminder scheduler. The scheduler is created but not started.
func New(cfg *config.Config, opts Options) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, storage.Options{
		Location:     loc,
		Now:          opts.Now,
		ReminderLead: cfg.Reminders.Lead,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to %s database", db.Driver())

	household := auth.NewAllowList(cfg.ParticipantIDs()...)
	engine := conversation.NewEngine(session.NewMemoryStore(), conversation.Catalog(db, db.Today)...)
	h := handlers.NewHandlers(db, household, engine, handlers.Options{
		RecentLimit: cfg.Display.RecentLimit,
		ChunkLimit:  cfg.Display.ChunkLimit,
	})

	outbox := reminder.NewOutbox()
	notifier := opts.Notifier
	if notifier == nil {
		notifier = reminder.Fanout{reminder.LogNotifier{}, outbox}
	}
	sched := reminder.NewScheduler(db, notifier, reminder.Config{
		Interval:     cfg.Reminders.PollInterval,
		Location:     loc,
		Participants: household.Participants(),
		Now:          opts.Now,
	})

	return &Dependencies{
		Config:    cfg,
		DB:        db,
		Household: household,
		Engine:    engine,
		Handlers:  h,
		Outbox:    outbox,
		Scheduler: sched,
	}, nil
}

// LoadConfig reads path (missing files fall back to defaults) and applies
// environment overrides.
func LoadConfig(path string, getenv func(string) string) (*config.Config, error) {
	if env := getenv("HOUSEHOLD_CONFIG"); env != "" && path == "" {
		path = env
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
