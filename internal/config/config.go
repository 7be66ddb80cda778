package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Session   SessionConfig   `yaml:"session"`
	Database  DatabaseConfig  `yaml:"database"`
	Upload    UploadConfig    `yaml:"upload"`
	AWS       AWSConfig       `yaml:"aws"`
	Listing   ListingConfig   `yaml:"listing"`
	Guestbook GuestbookConfig `yaml:"guestbook"`
	CSRF      CSRFConfig      `yaml:"csrf"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// PublicURL is used to build invitation links, e.g. https://example.com
	PublicURL string `yaml:"public_url"`
}

// BackendConfig points at the WeddingPress REST API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig holds admin session settings
type SessionConfig struct {
	Driver       string        `yaml:"driver"` // memory, sqlite or postgres
	SQLitePath   string        `yaml:"sqlite_path"`
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecret string        `yaml:"cookie_secret"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// UploadConfig selects where uploaded media goes
type UploadConfig struct {
	Driver string `yaml:"driver"` // backend or s3
	Prefix string `yaml:"prefix"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`
	PublicBase string `yaml:"public_base"`
}

// ListingConfig tunes the admin list controllers
type ListingConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// GuestbookConfig tunes the public guestbook feed
type GuestbookConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// CSRFConfig holds CSRF protection settings for admin forms
type CSRFConfig struct {
	Key    string `yaml:"key"`
	Secure bool   `yaml:"secure"`
	// TrustedOrigins are hosts allowed to post forms, e.g. localhost:3000
	TrustedOrigins []string `yaml:"trusted_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Path returns the config file path, honoring WEDDINGPRESS_CONFIG.
func Path() string {
	if p := os.Getenv("WEDDINGPRESS_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML bytes and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8080/api/v1"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.SQLitePath == "" {
		c.Session.SQLitePath = "sessions.db"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 72 * time.Hour
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "weddingpress_session"
	}
	if c.Upload.Driver == "" {
		c.Upload.Driver = "backend"
	}
	if c.Upload.Prefix == "" {
		c.Upload.Prefix = "weddingpress"
	}
	if c.Listing.Debounce == 0 {
		c.Listing.Debounce = 500 * time.Millisecond
	}
	if c.Guestbook.PollInterval == 0 {
		c.Guestbook.PollInterval = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the combinations that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Session.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	switch c.Upload.Driver {
	case "backend":
	case "s3":
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("upload driver s3 requires aws.s3_bucket")
		}
	default:
		return fmt.Errorf("unknown upload driver %q", c.Upload.Driver)
	}
	if len(c.Session.CookieSecret) < 32 {
		return fmt.Errorf("session.cookie_secret must be at least 32 bytes")
	}
	if len(c.CSRF.Key) != 32 {
		return fmt.Errorf("csrf.key must be exactly 32 bytes")
	}
	return nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
