package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:8000"
	DefaultListenAddr      = ":8001"
	DefaultLyricsURL       = "https://lrclib.net/api"
	DefaultListenBrainzURL = "https://api.listenbrainz.org"
	RequestTimeout         = 30 * time.Second
	stagingDirName         = ".incoming"
)

// Configuration structure
type Config struct {
	APIURL      string `json:"APIURL" yaml:"api_url"`
	MusicDir    string `json:"MusicDir" yaml:"music_dir"`
	StagingDir  string `json:"StagingDir,omitempty" yaml:"staging_dir,omitempty"`
	ListenAddr  string `json:"ListenAddr" yaml:"listen_addr"`
	FrontendDir string `json:"FrontendDir,omitempty" yaml:"frontend_dir,omitempty"`

	DefaultQuality         string `json:"DefaultQuality" yaml:"default_quality"`
	DownloadTimeoutSeconds int    `json:"DownloadTimeoutSeconds" yaml:"download_timeout_seconds"`
	JobGraceMillis         int    `json:"JobGraceMillis" yaml:"job_grace_millis"`
	ProgressPollMillis     int    `json:"ProgressPollMillis" yaml:"progress_poll_millis"`
	ProgressMaxMisses      int    `json:"ProgressMaxMisses" yaml:"progress_max_misses"`
	MaxRetryAttempts       int    `json:"MaxRetryAttempts" yaml:"max_retry_attempts"`
	Parallelism            int    `json:"Parallelism" yaml:"parallelism"`

	LyricsEnabled      bool   `json:"LyricsEnabled" yaml:"lyrics_enabled"`
	LyricsURL          string `json:"LyricsURL" yaml:"lyrics_url"`
	MusicBrainzEnabled bool   `json:"MusicBrainzEnabled" yaml:"musicbrainz_enabled"`
	ListenBrainzURL    string `json:"ListenBrainzURL" yaml:"listenbrainz_url"`

	SpotifyClientID     string `json:"SpotifyClientID,omitempty" yaml:"spotify_client_id,omitempty"`
	SpotifyClientSecret string `json:"SpotifyClientSecret,omitempty" yaml:"spotify_client_secret,omitempty"`
	NavidromeURL        string `json:"NavidromeURL,omitempty" yaml:"navidrome_url,omitempty"`
	NavidromeUsername   string `json:"NavidromeUsername,omitempty" yaml:"navidrome_username,omitempty"`
	NavidromePassword   string `json:"NavidromePassword,omitempty" yaml:"navidrome_password,omitempty"`

	LogFormat string `json:"LogFormat" yaml:"log_format"` // "console" or "json"
	Debug     bool   `json:"Debug" yaml:"debug"`
}

// DefaultConfig returns the configuration used when no file or environment
// value overrides a field.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		APIURL:                 DefaultAPIURL,
		MusicDir:               filepath.Join(home, "music"),
		ListenAddr:             DefaultListenAddr,
		DefaultQuality:         shared.DefaultQuality,
		DownloadTimeoutSeconds: 300,
		JobGraceMillis:         2000,
		ProgressPollMillis:     500,
		ProgressMaxMisses:      10,
		MaxRetryAttempts:       shared.DefaultMaxRetries,
		Parallelism:            4,
		LyricsEnabled:          true,
		LyricsURL:              DefaultLyricsURL,
		ListenBrainzURL:        DefaultListenBrainzURL,
		LogFormat:              "console",
	}
}

// DownloadTimeout bounds one whole byte transfer.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// JobGrace is how long a terminal job stays queryable.
func (c *Config) JobGrace() time.Duration {
	return time.Duration(c.JobGraceMillis) * time.Millisecond
}

// ProgressPollInterval is the progress feed polling cadence.
func (c *Config) ProgressPollInterval() time.Duration {
	return time.Duration(c.ProgressPollMillis) * time.Millisecond
}

// StagingPath is where in-flight downloads are written.
func (c *Config) StagingPath() string {
	if c.StagingDir != "" {
		return c.StagingDir
	}
	return filepath.Join(c.MusicDir, stagingDirName)
}

// SpotifyConfigured reports whether Spotify credentials are present.
func (c *Config) SpotifyConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// NavidromeConfigured reports whether a Navidrome library is configured.
func (c *Config) NavidromeConfigured() bool {
	return c.NavidromeURL != "" && c.NavidromeUsername != ""
}

// Validate checks that the configuration can drive the service.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.MusicDir == "" {
		return fmt.Errorf("music directory is required")
	}
	if c.DownloadTimeoutSeconds <= 0 {
		return fmt.Errorf("download timeout must be positive, got %d", c.DownloadTimeoutSeconds)
	}
	if c.ProgressPollMillis <= 0 || c.ProgressMaxMisses <= 0 {
		return fmt.Errorf("progress polling interval and miss threshold must be positive")
	}
	if c.JobGraceMillis < c.ProgressPollMillis {
		// a shorter grace lets a finished job vanish between two progress polls
		return fmt.Errorf("job grace period (%dms) must be at least the progress poll interval (%dms)", c.JobGraceMillis, c.ProgressPollMillis)
	}
	if c.DefaultQuality != "" && !shared.ValidQuality(c.DefaultQuality) {
		return fmt.Errorf("unknown default quality %q", c.DefaultQuality)
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	return nil
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	return shared.CreateDirIfNotExists(dir)
}

func isYAML(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if isYAML(filePath) {
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON or YAML file, chosen by extension.
func SaveConfig(filePath string, config *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filePath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnvFile loads a dotenv file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto config.
func ApplyEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("MUSIC_DIR", &config.MusicDir)
	setString("TIDAL_API_URL", &config.APIURL)
	setString("LISTEN_ADDR", &config.ListenAddr)
	setString("FRONTEND_DIR", &config.FrontendDir)
	setString("SPOTIFY_CLIENT_ID", &config.SpotifyClientID)
	setString("SPOTIFY_CLIENT_SECRET", &config.SpotifyClientSecret)
	setString("NAVIDROME_URL", &config.NavidromeURL)
	setString("NAVIDROME_USERNAME", &config.NavidromeUsername)
	setString("NAVIDROME_PASSWORD", &config.NavidromePassword)
	setString("LISTENBRAINZ_URL", &config.ListenBrainzURL)

	if v := os.Getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		config.Debug = true
	}
}

// Load builds the effective configuration: defaults, then the optional file,
// then .env and the process environment.
func Load(filePath, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if filePath != "" {
		if err := LoadConfig(filePath, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if envFile != "" {
		if err := LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg)

	return cfg, nil
}
