package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries everything the vault client needs injected: the store
// endpoint, the session token, and the company the session is scoped
// to. Company and session are explicit configuration here, never
// ambient state shared between components.
type Config struct {
	ServerURL   string   `yaml:"server_url"`
	AuthToken   string   `yaml:"auth_token"`
	CompanyID   int64    `yaml:"company_id"`
	Environment string   `yaml:"environment"`
	LogDir      string   `yaml:"log_dir"`
	Debug       bool     `yaml:"debug"`
	WatchIgnore []string `yaml:"watch_ignore"` // doublestar globs for watch mode
}

// Load reads configuration from the environment. Environment variables
// win over the optional config file.
func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		ServerURL:   getEnv("VAULT_SERVER_URL", "http://localhost:8080"),
		AuthToken:   getEnv("VAULT_TOKEN", ""),
		CompanyID:   getEnvInt64("VAULT_COMPANY_ID", 0),
		Environment: env,
		LogDir:      getEnv("VAULT_LOG_DIR", defaultLogDir()),
		Debug:       getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// LoadFile overlays values from a YAML config file onto cfg. Fields
// already set from the environment are kept.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.ServerURL == "http://localhost:8080" && file.ServerURL != "" {
		cfg.ServerURL = file.ServerURL
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = file.AuthToken
	}
	if cfg.CompanyID == 0 {
		cfg.CompanyID = file.CompanyID
	}
	if file.LogDir != "" && os.Getenv("VAULT_LOG_DIR") == "" {
		cfg.LogDir = file.LogDir
	}
	if len(file.WatchIgnore) > 0 {
		cfg.WatchIgnore = file.WatchIgnore
	}

	return nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.CompanyID <= 0 {
		return fmt.Errorf("company id is required")
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return home + "/.vault/logs"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
