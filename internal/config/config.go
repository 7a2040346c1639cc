package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LogFormat       string        `mapstructure:"log_format"`
	LogLevel        string        `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL       string        `mapstructure:"url"`
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

type RetryConfig struct {
	InitialInterval    time.Duration `mapstructure:"initial_interval"`
	BackoffCoefficient float64       `mapstructure:"backoff_coefficient"`
	MaximumInterval    time.Duration `mapstructure:"maximum_interval"`
	MaximumAttempts    int32         `mapstructure:"maximum_attempts"`
}

type TemporalConfig struct {
	HostPort        string        `mapstructure:"host_port"`
	Namespace       string        `mapstructure:"namespace"`
	TaskQueue       string        `mapstructure:"task_queue"`
	ActivityTimeout time.Duration `mapstructure:"activity_timeout"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

type LocalesConfig struct {
	DefaultLocale string `mapstructure:"default_locale"`
}

const (
	EmailProviderPostmark = "postmark"
	EmailProviderSMTP     = "smtp"
	EmailProviderNone     = "none"
)

type EmailConfig struct {
	Provider             string `mapstructure:"provider"`
	From                 string `mapstructure:"from"`
	ReplyTo              string `mapstructure:"reply_to"`
	PostmarkServerToken  string `mapstructure:"postmark_server_token"`
	PostmarkAccountToken string `mapstructure:"postmark_account_token"`
	SMTPHost             string `mapstructure:"smtp_host"`
	SMTPPort             int    `mapstructure:"smtp_port"`
	Username             string `mapstructure:"username"`
	Password             string `mapstructure:"password"`
}

type FirebaseConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
}

type PushConfig struct {
	Firebase FirebaseConfig `mapstructure:"firebase"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Locales  LocalesConfig  `mapstructure:"locales"`
	Email    EmailConfig    `mapstructure:"email"`
	Push     PushConfig     `mapstructure:"push"`
}

// Load reads config.yaml from the current directory or ./config and applies
// NOTIFY_ prefixed environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return LoadFrom(v)
}

// LoadFrom decodes an already populated viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("NOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.dedupe_ttl", 72*time.Hour)

	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "NOTIFICATIONS")
	v.SetDefault("temporal.activity_timeout", time.Minute)
	v.SetDefault("temporal.retry.initial_interval", 5*time.Second)
	v.SetDefault("temporal.retry.backoff_coefficient", 2.0)
	v.SetDefault("temporal.retry.maximum_interval", 10*time.Minute)
	v.SetDefault("temporal.retry.maximum_attempts", 20)

	v.SetDefault("locales.default_locale", "en")

	v.SetDefault("email.provider", EmailProviderNone)
	v.SetDefault("email.from", "")
	v.SetDefault("email.reply_to", "")
	v.SetDefault("email.postmark_server_token", "")
	v.SetDefault("email.postmark_account_token", "")
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")

	v.SetDefault("push.firebase.enabled", false)
	v.SetDefault("push.firebase.project_id", "")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("database.url must be set")
	}
	if strings.TrimSpace(c.Temporal.TaskQueue) == "" {
		return fmt.Errorf("temporal.task_queue must be set")
	}
	if c.Temporal.Retry.BackoffCoefficient < 1 {
		return fmt.Errorf("temporal.retry.backoff_coefficient must be at least 1")
	}

	switch c.Email.Provider {
	case EmailProviderNone:
	case EmailProviderPostmark:
		if c.Email.PostmarkServerToken == "" {
			return fmt.Errorf("email.postmark_server_token is required for the postmark provider")
		}
	case EmailProviderSMTP:
		if strings.TrimSpace(c.Email.SMTPHost) == "" {
			return fmt.Errorf("email.smtp_host is required for the smtp provider")
		}
	default:
		return fmt.Errorf("unknown email.provider %q", c.Email.Provider)
	}
	if c.Email.Provider != EmailProviderNone && strings.TrimSpace(c.Email.From) == "" {
		return fmt.Errorf("email.from is required when email delivery is enabled")
	}

	if c.Push.Firebase.Enabled && c.Push.Firebase.ProjectID == "" {
		return fmt.Errorf("push.firebase.project_id is required when firebase is enabled")
	}
	return nil
}
