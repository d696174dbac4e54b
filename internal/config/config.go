package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	API           APIConfig           `yaml:"api"`
	Auth          AuthConfig          `yaml:"auth"`
	Messaging     MessagingConfig     `yaml:"messaging"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Exports       ExportConfig        `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// AuthConfig holds the staff sign-in credentials and session settings.
type AuthConfig struct {
	AdminEmail        string `yaml:"admin_email"`
	AdminPassword     string `yaml:"admin_password"`
	SessionTTLSeconds int    `yaml:"session_ttl_seconds"`
}

// MessagingConfig points at the server-side Twilio proxy.
type MessagingConfig struct {
	ProxyBaseURL       string `yaml:"proxy_base_url"`
	SMSPath            string `yaml:"sms_path"`
	WhatsAppPath       string `yaml:"whatsapp_path"`
	DefaultCountryCode string `yaml:"default_country_code"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// NotificationsConfig selects inline fire-and-forget dispatch or the
// durable outbox worker.
type NotificationsConfig struct {
	Mode          string  `yaml:"mode"`
	MaxRetries    int     `yaml:"max_retries"`
	InitialDelay  int     `yaml:"initial_delay_seconds"`
	MaxDelay      int     `yaml:"max_delay_seconds"`
	BackoffFactor float64 `yaml:"backoff_factor"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

const (
	NotifyModeInline = "inline"
	NotifyModeOutbox = "outbox"
)

func Load(configPath string) (*Config, error) {
	// .env не обязателен, но переменные из него попадают в ExpandEnv
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.AdminEmail == "" || c.Auth.AdminPassword == "" {
		return errors.New("auth admin credentials are required")
	}

	if c.Messaging.ProxyBaseURL == "" {
		return errors.New("messaging proxy base url is required")
	}

	switch c.Notifications.Mode {
	case NotifyModeInline, NotifyModeOutbox:
	default:
		return fmt.Errorf("unknown notifications mode: %q", c.Notifications.Mode)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}

	if c.Auth.SessionTTLSeconds == 0 {
		c.Auth.SessionTTLSeconds = 12 * 60 * 60
	}

	if c.Messaging.SMSPath == "" {
		c.Messaging.SMSPath = "/api/send-sms"
	}
	if c.Messaging.WhatsAppPath == "" {
		c.Messaging.WhatsAppPath = "/api/send-whatsapp"
	}
	if c.Messaging.DefaultCountryCode == "" {
		c.Messaging.DefaultCountryCode = "+1"
	}
	if c.Messaging.TimeoutSeconds == 0 {
		c.Messaging.TimeoutSeconds = 10
	}

	if c.Notifications.Mode == "" {
		c.Notifications.Mode = NotifyModeInline
	}
	if c.Notifications.MaxRetries == 0 {
		c.Notifications.MaxRetries = 5
	}
	if c.Notifications.InitialDelay == 0 {
		c.Notifications.InitialDelay = 2
	}
	if c.Notifications.MaxDelay == 0 {
		c.Notifications.MaxDelay = 60
	}
	if c.Notifications.BackoffFactor == 0 {
		c.Notifications.BackoffFactor = 2
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
