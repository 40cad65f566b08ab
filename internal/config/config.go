// Package config provides the configuration schema for fitclient.
//
// Every value can come from a YAML file, a FITCLIENT_* environment variable or
// a CLI flag. Nothing is required: with no file at all the client talks to the
// hosted backend and keeps its session under ~/.fitclient.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// DefaultBaseURL is the canonical /api prefixed backend origin.
const DefaultBaseURL = "https://fitness-app-0zk0.onrender.com/api"

// Config is the top-level configuration for fitclient.
type Config struct {
	// API configures the backend connection.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Store selects where the session (token and identity) is persisted.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Log configures the slog handler.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Booking tunes the class booking flow.
	Booking BookingConfig `yaml:"booking" mapstructure:"booking"`

	// Contact tunes the contact form.
	Contact ContactConfig `yaml:"contact" mapstructure:"contact"`

	// AccessRules overrides the CEL rule guarding a page, keyed by page name.
	// Pages left out keep their built-in rule.
	AccessRules map[string]string `yaml:"access_rules" mapstructure:"access_rules" validate:"omitempty,dive,keys,access_page,endkeys,required"`

	// Telemetry configures optional tracing and metrics export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode turns on debug logging.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the backend origin including the /api prefix.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// Timeout bounds every request (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"required,duration"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	// Type is "file", "sqlite" or "memory". Default: "file".
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=file sqlite memory"`
	// Path is the file or database location. Ignored for "memory".
	Path string `yaml:"path" mapstructure:"path" validate:"required_unless=Type memory"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: "warn".
	Level string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// BookingConfig tunes booking.
type BookingConfig struct {
	// AttemptsPerMinute caps booking attempts per member. Default: 5.
	AttemptsPerMinute int `yaml:"attempts_per_minute" mapstructure:"attempts_per_minute" validate:"min=1"`
	// RecordPayment creates a PENDING payment after each booking. Default: true.
	RecordPayment bool `yaml:"record_payment" mapstructure:"record_payment"`
	// PaymentAmount is the amount of that payment. Default: 25.00.
	PaymentAmount float64 `yaml:"payment_amount" mapstructure:"payment_amount" validate:"gt=0"`
	// Timezone class times without an offset are read in, as an IANA name.
	// Empty means the system zone.
	Timezone string `yaml:"timezone" mapstructure:"timezone" validate:"omitempty,timezone"`
}

// ContactConfig tunes the contact form.
type ContactConfig struct {
	// Timeout bounds one submission. Default: "10s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"required,duration"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	// Trace prints OpenTelemetry spans to stderr.
	Trace bool `yaml:"trace" mapstructure:"trace"`
	// MetricsTextfile, when set, receives the Prometheus metrics on exit.
	MetricsTextfile string `yaml:"metrics_textfile" mapstructure:"metrics_textfile"`
}

// DefaultDir returns ~/.fitclient, or .fitclient when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fitclient"
	}
	return filepath.Join(home, ".fitclient")
}

// DefaultStorePath returns the default location for a store type.
func DefaultStorePath(storeType string) string {
	switch storeType {
	case StoreSQLite:
		return filepath.Join(DefaultDir(), "session.db")
	case StoreMemory:
		return ""
	default:
		return filepath.Join(DefaultDir(), "session.json")
	}
}

// SetDevDefaults applies development mode settings.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.Log.Level = "debug"
}

// SetDefaults applies default values to every unset field.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}

	if c.Store.Type == "" {
		c.Store.Type = StoreFile
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath(c.Store.Type)
	}

	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}

	if c.Booking.AttemptsPerMinute == 0 {
		c.Booking.AttemptsPerMinute = 5
	}
	// viper.IsSet distinguishes "not set" from "explicitly false".
	if !viper.IsSet("booking.record_payment") {
		c.Booking.RecordPayment = true
	}
	if c.Booking.PaymentAmount == 0 {
		c.Booking.PaymentAmount = 25.00
	}

	if c.Contact.Timeout == "" {
		c.Contact.Timeout = "10s"
	}
}

// APITimeout returns the parsed API timeout. Call after Validate.
func (c *Config) APITimeout() time.Duration {
	d, _ := time.ParseDuration(c.API.Timeout)
	return d
}

// ContactTimeout returns the parsed contact timeout. Call after Validate.
func (c *Config) ContactTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Contact.Timeout)
	return d
}

// Location returns the booking timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Booking.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
