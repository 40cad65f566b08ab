package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for fitclient.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the fitclient binary itself
// is never picked up.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// ReadInConfig then returns ConfigFileNotFoundError, which callers ignore.
		viper.SetConfigName("fitclient")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: FITCLIENT_API_BASE_URL
	viper.SetEnvPrefix("FITCLIENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches ., ~/.fitclient and the system config directory.
func findConfigFile() string {
	paths := []string{".", DefaultDir()}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "fitclient"))
		}
	} else {
		paths = append(paths, "/etc/fitclient")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for fitclient.yaml or .yml.
// Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "fitclient"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every scalar key so FITCLIENT_STORE_TYPE overrides
// store.type even when the file does not mention it.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.timeout")

	_ = viper.BindEnv("store.type")
	_ = viper.BindEnv("store.path")

	_ = viper.BindEnv("log.level")

	_ = viper.BindEnv("booking.attempts_per_minute")
	_ = viper.BindEnv("booking.record_payment")
	_ = viper.BindEnv("booking.payment_amount")
	_ = viper.BindEnv("booking.timezone")

	_ = viper.BindEnv("contact.timeout")

	_ = viper.BindEnv("telemetry.trace")
	_ = viper.BindEnv("telemetry.metrics_textfile")

	// access_rules is a map; set it in the config file.

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults and validates the result.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration and applies defaults, but does NOT
// apply dev defaults or validate. Use it when CLI flags still need to be applied.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
