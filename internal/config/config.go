package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config is the top-level household.yaml configuration.
type Config struct {
	Household HouseholdConfig `yaml:"household"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Reminders ReminderConfig  `yaml:"reminders"`
	Display   DisplayConfig   `yaml:"display"`
}

// Participant is one allowed chat user.
type Participant struct {
	ID    int64  `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

// HouseholdConfig lists the participants and their shared timezone.
type HouseholdConfig struct {
	Participants []Participant `yaml:"participants"`
	Timezone     string        `yaml:"timezone"`
}

// DatabaseConfig selects the storage driver. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ReminderConfig controls the plan reminder loop.
type ReminderConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Lead         time.Duration `yaml:"lead"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// DisplayConfig tunes reply sizes.
type DisplayConfig struct {
	RecentLimit int `yaml:"recent_limit"`
	ChunkLimit  int `yaml:"chunk_limit"`
}

// Load reads a household.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path when it exists and falls back to defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults and no participants.
func Default() *Config {
	return &Config{
		Household: HouseholdConfig{Timezone: "Europe/Moscow"},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "household.db"},
		Server:    ServerConfig{Addr: ":8080"},
		Reminders: ReminderConfig{
			Enabled:      true,
			Lead:         30 * time.Minute,
			PollInterval: time.Minute,
		},
		Display: DisplayConfig{RecentLimit: 10, ChunkLimit: 4000},
	}
}

// ApplyEnv overrides file values from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("HOUSEHOLD_PARTICIPANTS"); v != "" {
		var ps []Participant
		for _, field := range strings.Split(v, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing HOUSEHOLD_PARTICIPANTS: %w", err)
			}
			ps = append(ps, Participant{ID: id})
		}
		c.Household.Participants = ps
	}
	if v := getenv("TZ_NAME"); v != "" {
		c.Household.Timezone = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = v
	}
	if v := getenv("DB_PATH"); v != "" {
		c.Database.Driver = "sqlite"
		c.Database.DSN = v
	}
	if v := getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := getenv("REMINDER_LEAD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing REMINDER_LEAD: %w", err)
		}
		c.Reminders.Lead = d
	}
	if v := getenv("REMINDERS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing REMINDERS_ENABLED: %w", err)
		}
		c.Reminders.Enabled = b
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	ids := c.ParticipantIDs()
	if len(ids) < 2 {
		return fmt.Errorf("household needs at least two participants, got %d", len(ids))
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("invalid participant id %d", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate participant id %d", id)
		}
		seen[id] = true
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Reminders.Lead < 0 {
		return fmt.Errorf("reminder lead must not be negative")
	}
	if c.Display.ChunkLimit < 100 {
		return fmt.Errorf("chunk limit %d is too small", c.Display.ChunkLimit)
	}
	return nil
}

// Location resolves the household timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Household.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Household.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// ParticipantIDs returns the participant IDs in configured order.
func (c *Config) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(c.Household.Participants))
	for _, p := range c.Household.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
