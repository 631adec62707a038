// Package config loads the server configuration from YAML, with
// defaults suitable for local development.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the bancho server.
type Config struct {
	// Network
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Identity
	Domain  string `yaml:"domain"`
	BotName string `yaml:"bot_name"`

	// Chat
	CommandPrefix string `yaml:"command_prefix"`
	WelcomeMsg    string `yaml:"welcome_msg"`

	// Client main menu banner
	MenuIconURL  string `yaml:"menu_icon_url"`
	MenuClickURL string `yaml:"menu_click_url"`

	// HTTP
	GzipLevel int `yaml:"gzip_level"` // 0 disables compression

	Debug bool `yaml:"debug"`

	Database DatabaseConfig `yaml:"database"`
}

// MenuIcon returns the banner in the "image|click" form the client expects.
func (c *Config) MenuIcon() string {
	if c.MenuIconURL == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s", c.MenuIconURL, c.MenuClickURL)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Addr:          "0.0.0.0:8080",
		MetricsAddr:   "127.0.0.1:9100",
		Domain:        "gulag.local",
		BotName:       "Aika",
		CommandPrefix: "!",
		WelcomeMsg:    "Welcome to gulag!",
		GzipLevel:     6,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gulag",
			Password: "gulag",
			DBName:   "gulag",
			SSLMode:  "disable",
		},
	}
}

// Load reads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
