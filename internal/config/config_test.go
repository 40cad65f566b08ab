package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != "30s" {
		t.Errorf("API.Timeout = %q, want %q", cfg.API.Timeout, "30s")
	}
	if cfg.Store.Type != StoreFile {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, StoreFile)
	}
	if !strings.HasSuffix(cfg.Store.Path, "session.json") {
		t.Errorf("Store.Path = %q, want a session.json path", cfg.Store.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Booking.AttemptsPerMinute != 5 {
		t.Errorf("Booking.AttemptsPerMinute = %d, want 5", cfg.Booking.AttemptsPerMinute)
	}
	if !cfg.Booking.RecordPayment {
		t.Error("Booking.RecordPayment should default to true")
	}
	if cfg.Booking.PaymentAmount != 25.00 {
		t.Errorf("Booking.PaymentAmount = %v, want 25", cfg.Booking.PaymentAmount)
	}
	if cfg.Contact.Timeout != "10s" {
		t.Errorf("Contact.Timeout = %q, want %q", cfg.Contact.Timeout, "10s")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		API:     APIConfig{BaseURL: "http://localhost:8080/api", Timeout: "5s"},
		Store:   StoreConfig{Type: StoreSQLite, Path: "/tmp/fit.db"},
		Log:     LogConfig{Level: "error"},
		Booking: BookingConfig{AttemptsPerMinute: 2, PaymentAmount: 40},
		Contact: ContactConfig{Timeout: "3s"},
	}
	cfg.SetDefaults()

	if cfg.API.BaseURL != "http://localhost:8080/api" || cfg.API.Timeout != "5s" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Store.Path != "/tmp/fit.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Booking.AttemptsPerMinute != 2 || cfg.Booking.PaymentAmount != 40 {
		t.Errorf("Booking = %+v", cfg.Booking)
	}
	if cfg.APITimeout() != 5*time.Second || cfg.ContactTimeout() != 3*time.Second {
		t.Errorf("timeouts = %s, %s", cfg.APITimeout(), cfg.ContactTimeout())
	}
}

func TestDefaultStorePath(t *testing.T) {
	t.Parallel()

	if got := DefaultStorePath(StoreSQLite); filepath.Base(got) != "session.db" {
		t.Errorf("sqlite path = %q", got)
	}
	if got := DefaultStorePath(StoreFile); filepath.Base(got) != "session.json" {
		t.Errorf("file path = %q", got)
	}
	if got := DefaultStorePath(StoreMemory); got != "" {
		t.Errorf("memory path = %q, want empty", got)
	}
}

func TestConfig_SetDevDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDefaults()
	cfg.SetDevDefaults()
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug in dev mode", cfg.Log.Level)
	}

	cfg = Config{}
	cfg.SetDefaults()
	cfg.SetDevDefaults()
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, dev defaults applied outside dev mode", cfg.Log.Level)
	}
}

func TestConfig_Location(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	if cfg.Location() != time.Local {
		t.Error("empty timezone should use time.Local")
	}
	cfg.Booking.Timezone = "UTC"
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
}

func TestFindConfigFileInPaths_EmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Errorf("findConfigFileInPaths() = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_MatchesYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := filepath.Join(dir, "fitclient.yaml")
	if err := os.WriteFile(want, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFileInPaths([]string{dir}); got != want {
		t.Errorf("findConfigFileInPaths() = %q, want %q", got, want)
	}
}

func TestFindConfigFileInPaths_MatchesYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := filepath.Join(dir, "fitclient.yml")
	if err := os.WriteFile(want, []byte("dev_mode: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFileInPaths([]string{dir}); got != want {
		t.Errorf("findConfigFileInPaths() = %q, want %q", got, want)
	}
}

func TestFindConfigFileInPaths_IgnoresNoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fitclient"), []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Errorf("findConfigFileInPaths() = %q, want empty (binary must not match)", got)
	}
}

func TestFindConfigFileInPaths_SearchOrder(t *testing.T) {
	t.Parallel()
	first, second := t.TempDir(), t.TempDir()
	want := filepath.Join(second, "fitclient.yaml")
	if err := os.WriteFile(want, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFileInPaths([]string{first, second}); got != want {
		t.Errorf("findConfigFileInPaths() = %q, want %q", got, want)
	}
}

// TestLoadConfig_FileAndEnv uses the global viper instance, so it does not run in parallel.
func TestLoadConfig_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "fitclient.yaml")
	yaml := `
api:
  base_url: http://localhost:9000/api
store:
  type: memory
booking:
  record_payment: false
access_rules:
  tracker: 'role == "MEMBER"'
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FITCLIENT_LOG_LEVEL", "info")
	t.Setenv("FITCLIENT_CONTACT_TIMEOUT", "2s")

	InitViper(path)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", ConfigFileUsed(), path)
	}
	if cfg.API.BaseURL != "http://localhost:9000/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Store.Type != StoreMemory || cfg.Store.Path != "" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Booking.RecordPayment {
		t.Error("explicit record_payment: false was overridden")
	}
	if cfg.Log.Level != "info" || cfg.ContactTimeout() != 2*time.Second {
		t.Errorf("env overrides not applied: level=%q contact=%s", cfg.Log.Level, cfg.ContactTimeout())
	}
	if cfg.AccessRules["tracker"] != `role == "MEMBER"` {
		t.Errorf("AccessRules = %v", cfg.AccessRules)
	}
}

func TestLoadConfig_InvalidRule(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "fitclient.yaml")
	if err := os.WriteFile(path, []byte("access_rules:\n  dashboard: 'role =='\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	InitViper(path)
	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "access_rules") {
		t.Errorf("LoadConfig() error = %v, want access_rules error", err)
	}
}
