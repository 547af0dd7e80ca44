package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Flickr archiver
type Config struct {
	// Flickr API credentials and target account
	Flickr FlickrConfig `yaml:"flickr" json:"flickr"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Archive output settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FlickrConfig holds Flickr-specific configuration
type FlickrConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	APISecret string `yaml:"api_secret" json:"api_secret"`
	UserID    string `yaml:"user_id" json:"user_id"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// RateLimitConfig holds the pacing and retry policy.
// PhotoDelay is applied on entering each photo's archive unit and
// UnitCooldown after completing it; both are unconditional courtesy delays.
type RateLimitConfig struct {
	PhotoDelay       time.Duration `yaml:"photo_delay" json:"photo_delay"`
	UnitCooldown     time.Duration `yaml:"unit_cooldown" json:"unit_cooldown"`
	MaxRetries       int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay" json:"retry_delay"`
	UnavailableDelay time.Duration `yaml:"unavailable_delay" json:"unavailable_delay"`
}

// ArchiveConfig holds archive layout configuration
type ArchiveConfig struct {
	Root          string `yaml:"root" json:"root"`
	PhotosDir     string `yaml:"photos_dir" json:"photos_dir"`
	FavoritesDir  string `yaml:"favorites_dir" json:"favorites_dir"`
	PageSize      int    `yaml:"page_size" json:"page_size"`
	SkipFavorites bool   `yaml:"skip_favorites" json:"skip_favorites"`
}

// DownloadConfig holds binary download configuration
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			UserAgent: "flickrarchiver/1.0 (+local photo archival)",
		},
		RateLimit: RateLimitConfig{
			PhotoDelay:       1200 * time.Millisecond,
			UnitCooldown:     500 * time.Millisecond,
			MaxRetries:       3,
			RetryDelay:       2 * time.Second,
			UnavailableDelay: 5 * time.Second,
		},
		Archive: ArchiveConfig{
			Root:         "./flickr_archive",
			PhotosDir:    "my_photos",
			FavoritesDir: "favorited_photos",
			PageSize:     100,
		},
		Download: DownloadConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("FLICKRARCHIVER_API_KEY"); apiKey != "" {
		c.Flickr.APIKey = apiKey
	}
	if apiSecret := os.Getenv("FLICKRARCHIVER_API_SECRET"); apiSecret != "" {
		c.Flickr.APISecret = apiSecret
	}
	if userID := os.Getenv("FLICKRARCHIVER_USER_ID"); userID != "" {
		c.Flickr.UserID = userID
	}
	if userAgent := os.Getenv("FLICKRARCHIVER_USER_AGENT"); userAgent != "" {
		c.Flickr.UserAgent = userAgent
	}

	if root := os.Getenv("FLICKRARCHIVER_ARCHIVE_ROOT"); root != "" {
		c.Archive.Root = root
	}

	if delay := os.Getenv("FLICKRARCHIVER_PHOTO_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.RateLimit.PhotoDelay = d
		}
	}

	if logLevel := os.Getenv("FLICKRARCHIVER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".flickrarchiver.yaml",
		".flickrarchiver.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "flickrarchiver", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "flickrarchiver", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".flickrarchiver.yaml"),
		filepath.Join(os.Getenv("HOME"), ".flickrarchiver.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Flickr.APIKey == "" {
		errs = append(errs, errors.New("Flickr API key is required"))
	}
	if c.Flickr.APISecret == "" {
		errs = append(errs, errors.New("Flickr API secret is required"))
	}
	if c.Flickr.UserID == "" {
		errs = append(errs, errors.New("Flickr user ID (NSID) is required"))
	}

	if c.RateLimit.PhotoDelay < 0 {
		errs = append(errs, errors.New("photo delay cannot be negative"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Archive.Root == "" {
		errs = append(errs, errors.New("archive root is required"))
	}
	if c.Archive.PageSize <= 0 || c.Archive.PageSize > 500 {
		errs = append(errs, errors.New("page size must be between 1 and 500"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Flickr.APIKey = apiKey
	}
	if apiSecret, ok := flags["api-secret"].(string); ok && apiSecret != "" {
		c.Flickr.APISecret = apiSecret
	}
	if userID, ok := flags["user-id"].(string); ok && userID != "" {
		c.Flickr.UserID = userID
	}
	if root, ok := flags["archive-root"].(string); ok && root != "" {
		c.Archive.Root = root
	}
	if skipFavorites, ok := flags["skip-favorites"].(bool); ok {
		c.Archive.SkipFavorites = skipFavorites
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".flickrarchiver.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
