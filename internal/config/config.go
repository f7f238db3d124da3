package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const appDirName = "ResumeAdmin"

// Config holds application configuration
type Config struct {
	APIURL                string `json:"api_url"`
	CallbackAddr          string `json:"callback_addr"`
	DownloadsDir          string `json:"downloads_dir"`
	ExportDir             string `json:"export_dir"`
	StorePath             string `json:"store_path"`
	PageSize              int    `json:"page_size"`
	HealthIntervalSeconds int    `json:"health_interval_seconds"`
	LogLevel              string `json:"log_level"`
	LogFormat             string `json:"log_format"`

	// path is the file the config was loaded from, and where Save writes
	path string
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	downloads := "."
	if home, err := os.UserHomeDir(); err == nil {
		downloads = filepath.Join(home, "Downloads")
	}

	return &Config{
		APIURL:                "http://localhost:5000",
		CallbackAddr:          "127.0.0.1:3000",
		DownloadsDir:          downloads,
		ExportDir:             downloads,
		PageSize:              6,
		HealthIntervalSeconds: 10,
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// GetConfigDir returns the application config directory, creating it if needed.
// On Windows: %APPDATA%/ResumeAdmin
// On Unix: ~/.config/ResumeAdmin
func GetConfigDir() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), appDirName)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", appDirName)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file from the default path, then applies .env and
// environment overrides
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}
	cfg.ApplyEnv()

	if cfg.StorePath == "" {
		cfg.StorePath = filepath.Join(filepath.Dir(configPath), "state.json")
	}
	return cfg, nil
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()
	config.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration back to the file it was loaded from, or to
// the default config path
func (c *Config) Save() error {
	if c.path != "" {
		return c.SaveTo(c.path)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv() {
	c.APIURL = getEnv("API_URL", c.APIURL)
	c.CallbackAddr = getEnv("CALLBACK_ADDR", c.CallbackAddr)
	c.DownloadsDir = getEnv("DOWNLOADS_DIR", c.DownloadsDir)
	c.ExportDir = getEnv("EXPORT_DIR", c.ExportDir)
	c.StorePath = getEnv("STORE_PATH", c.StorePath)
	c.PageSize = getEnvAsInt("PAGE_SIZE", c.PageSize)
	c.HealthIntervalSeconds = getEnvAsInt("HEALTH_INTERVAL_SECONDS", c.HealthIntervalSeconds)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// Settings are the fields editable from the settings tab
type Settings struct {
	APIURL                string
	DownloadsDir          string
	ExportDir             string
	PageSize              int
	HealthIntervalSeconds int
}

// Settings returns the editable fields
func (c *Config) Settings() Settings {
	return Settings{
		APIURL:                c.APIURL,
		DownloadsDir:          c.DownloadsDir,
		ExportDir:             c.ExportDir,
		PageSize:              c.PageSize,
		HealthIntervalSeconds: c.HealthIntervalSeconds,
	}
}

// WithSettings returns a validated copy carrying s. The receiver is unchanged.
func (c *Config) WithSettings(s Settings) (*Config, error) {
	next := *c
	next.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")
	next.DownloadsDir = strings.TrimSpace(s.DownloadsDir)
	next.ExportDir = strings.TrimSpace(s.ExportDir)
	next.PageSize = s.PageSize
	next.HealthIntervalSeconds = s.HealthIntervalSeconds

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// HealthInterval returns the health poll period
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}

	if c.DownloadsDir == "" || c.ExportDir == "" {
		return fmt.Errorf("downloads_dir and export_dir are required")
	}

	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive")
	}

	if c.HealthIntervalSeconds < 1 {
		return fmt.Errorf("health_interval_seconds must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
