package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once at startup
// and passed by reference; nothing mutates it afterwards.
type Config struct {
	// Plex (primary target)
	PlexURL   string
	PlexToken string

	// Sonarr (secondary, tv)
	SonarrURL    string
	SonarrAPIKey string

	// Radarr (secondary, movies)
	RadarrURL    string
	RadarrAPIKey string

	// Overseerr (request tracker)
	OverseerrURL    string
	OverseerrAPIKey string

	// Cascade
	TargetTimeout  time.Duration // per adapter call (default: 10s)
	CascadeWorkers int           // bounded per-candidate parallelism (default: 3)

	// Retention policy for scheduled scans
	GracePeriodDays         int
	InactivityThresholdDays int
	MinRating               float64 // items rated at or above this are kept; 0 disables
	RetentionDryRun         bool
	RetentionSchedule       string // cron expression

	// Server
	ServerPort string

	// Paths
	ProtectedFile string // $CONFIG_DIR/protected.txt
	DatabaseFile  string // $CONFIG_DIR/purgarr.db

	// Logging
	LogLevel string
}

// SonarrEnabled reports whether a Sonarr integration is configured
func (c *Config) SonarrEnabled() bool { return c.SonarrURL != "" && c.SonarrAPIKey != "" }

// RadarrEnabled reports whether a Radarr integration is configured
func (c *Config) RadarrEnabled() bool { return c.RadarrURL != "" && c.RadarrAPIKey != "" }

// OverseerrEnabled reports whether an Overseerr integration is configured
func (c *Config) OverseerrEnabled() bool { return c.OverseerrURL != "" && c.OverseerrAPIKey != "" }

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("TARGET_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CASCADE_WORKERS", 3)
	viper.SetDefault("GRACE_PERIOD_DAYS", 30)
	viper.SetDefault("INACTIVITY_THRESHOLD_DAYS", 15)
	viper.SetDefault("RETENTION_DRY_RUN", true)
	viper.SetDefault("RETENTION_SCHEDULE", "0 4 * * *")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "purgarr")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		PlexURL:   viper.GetString("PLEX_URL"),
		PlexToken: viper.GetString("PLEX_TOKEN"),

		SonarrURL:    viper.GetString("SONARR_URL"),
		SonarrAPIKey: viper.GetString("SONARR_API_KEY"),

		RadarrURL:    viper.GetString("RADARR_URL"),
		RadarrAPIKey: viper.GetString("RADARR_API_KEY"),

		OverseerrURL:    viper.GetString("OVERSEERR_URL"),
		OverseerrAPIKey: viper.GetString("OVERSEERR_API_KEY"),

		TargetTimeout:  time.Duration(viper.GetInt("TARGET_TIMEOUT_SECONDS")) * time.Second,
		CascadeWorkers: viper.GetInt("CASCADE_WORKERS"),

		GracePeriodDays:         viper.GetInt("GRACE_PERIOD_DAYS"),
		InactivityThresholdDays: viper.GetInt("INACTIVITY_THRESHOLD_DAYS"),
		MinRating:               viper.GetFloat64("MIN_RATING"),
		RetentionDryRun:         viper.GetBool("RETENTION_DRY_RUN"),
		RetentionSchedule:       viper.GetString("RETENTION_SCHEDULE"),

		ServerPort: viper.GetString("SERVER_PORT"),

		ProtectedFile: filepath.Join(configDir, "protected.txt"),
		DatabaseFile:  filepath.Join(configDir, "purgarr.db"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.PlexURL == "" {
		return nil, fmt.Errorf("PLEX_URL is required")
	}
	if config.PlexToken == "" {
		return nil, fmt.Errorf("PLEX_TOKEN is required")
	}
	if config.CascadeWorkers < 1 {
		return nil, fmt.Errorf("CASCADE_WORKERS must be at least 1")
	}
	if config.TargetTimeout <= 0 {
		return nil, fmt.Errorf("TARGET_TIMEOUT_SECONDS must be positive")
	}

	return config, nil
}
