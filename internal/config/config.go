// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/almanac/internal/dateutil"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	API      APIConfig      `toml:"api"`
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// ServerConfig holds settings for `almanac serve`.
type ServerConfig struct {
	Addr string `toml:"addr"` // e.g., ":8080"
}

// APIConfig holds settings for talking to a remote events API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"` // empty means use the local database
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CalendarConfig holds editing and caching settings.
type CalendarConfig struct {
	Timezone          string `toml:"timezone"` // IANA name or "Local"
	MinSpanMinutes    int    `toml:"min_span_minutes"`
	SnapMinutes       int    `toml:"snap_minutes"`
	StaleAfterMinutes int    `toml:"stale_after_minutes"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath         string `toml:"db_path"`
	RejectOverlaps bool   `toml:"reject_overlaps"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme       string `toml:"theme"`         // "mocha", "frappe", "latte"
	RowsPerHour int    `toml:"rows_per_hour"` // terminal rows per hour in the day view
	DayStart    string `toml:"day_start"`     // first hour shown, e.g. "08:00"
	DayEnd      string `toml:"day_end"`       // last hour shown, e.g. "20:00"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		API: APIConfig{
			TimeoutSeconds: 10,
		},
		Calendar: CalendarConfig{
			Timezone:          "Local",
			MinSpanMinutes:    10,
			SnapMinutes:       10,
			StaleAfterMinutes: 5,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme:       "mocha",
			RowsPerHour: 4,
			DayStart:    "08:00",
			DayEnd:      "20:00",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "almanac.db"
	}
	return filepath.Join(home, ".local", "share", "almanac", "almanac.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "almanac", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies ALMANAC_* environment variables on top of the
// file config.
func applyEnvOverrides(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"ALMANAC_SERVER_ADDR", &cfg.Server.Addr},
		{"ALMANAC_API_BASE_URL", &cfg.API.BaseURL},
		{"ALMANAC_TIMEZONE", &cfg.Calendar.Timezone},
		{"ALMANAC_DB_PATH", &cfg.Storage.DBPath},
		{"ALMANAC_UI_THEME", &cfg.UI.Theme},
		{"ALMANAC_DAY_START", &cfg.UI.DayStart},
		{"ALMANAC_DAY_END", &cfg.UI.DayEnd},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"ALMANAC_API_TIMEOUT_SECONDS", &cfg.API.TimeoutSeconds},
		{"ALMANAC_MIN_SPAN_MINUTES", &cfg.Calendar.MinSpanMinutes},
		{"ALMANAC_SNAP_MINUTES", &cfg.Calendar.SnapMinutes},
		{"ALMANAC_STALE_AFTER_MINUTES", &cfg.Calendar.StaleAfterMinutes},
		{"ALMANAC_ROWS_PER_HOUR", &cfg.UI.RowsPerHour},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", i.env, v)
		}
		*i.dst = n
	}

	if v := os.Getenv("ALMANAC_REJECT_OVERLAPS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALMANAC_REJECT_OVERLAPS must be a boolean, got %q", v)
		}
		cfg.Storage.RejectOverlaps = b
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Calendar.MinSpanMinutes <= 0 {
		return errors.New("min_span_minutes must be positive")
	}
	if c.Calendar.SnapMinutes <= 0 {
		return errors.New("snap_minutes must be positive")
	}
	if c.Calendar.StaleAfterMinutes <= 0 {
		return errors.New("stale_after_minutes must be positive")
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}
	if c.UI.RowsPerHour <= 0 || 60%c.UI.RowsPerHour != 0 {
		return fmt.Errorf("rows_per_hour must divide 60, got %d", c.UI.RowsPerHour)
	}
	if err := validateTime(c.UI.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.UI.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.UI.DayStart >= c.UI.DayEnd {
		return errors.New("day_start must be before day_end")
	}
	if c.API.BaseURL == "" && c.Storage.DBPath == "" {
		return errors.New("db_path must be set when no api base_url is configured")
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	hour := t[0:2]
	min := t[3:5]
	if !isDigits(hour) || !isDigits(min) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Location resolves the configured time zone. "Local" is resolved to the
// host zone's IANA name. A remote API needs that name, so remote mode fails
// when the host zone cannot be named.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" || c.Calendar.Timezone == "Local" {
		loc, err := dateutil.LocalZone()
		switch {
		case err == nil:
			return loc, nil
		case c.Remote():
			return nil, fmt.Errorf("timezone %q: %w; set calendar.timezone to an IANA name", c.Calendar.Timezone, err)
		default:
			return time.Local, nil
		}
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// Remote reports whether events come from a remote API rather than the
// local database.
func (c *Config) Remote() bool {
	return c.API.BaseURL != ""
}

// Timeout returns the API request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// StaleAfter returns how long a cached period stays fresh.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Calendar.StaleAfterMinutes) * time.Minute
}

// MinutesPerRow returns how many minutes one terminal row covers.
func (c *Config) MinutesPerRow() int {
	return 60 / c.UI.RowsPerHour
}

// DayBounds returns day_start and day_end in minutes from midnight.
// Call it on a validated config.
func (c *Config) DayBounds() (start, end int) {
	return clockMinutes(c.UI.DayStart), clockMinutes(c.UI.DayEnd)
}

func clockMinutes(hhmm string) int {
	h, _ := strconv.Atoi(hhmm[0:2])
	m, _ := strconv.Atoi(hhmm[3:5])
	return h*60 + m
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
