// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Streamhost StreamhostConfig
	OAuth      OAuthConfig
	Session    SessionConfig
	Sync       SyncConfig
	RabbitMQ   RabbitMQConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Server     ServerConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	TemplatesDir    string
	StaticDir       string
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// StreamhostConfig contains the external video-hosting API configuration.
type StreamhostConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// OAuthConfig contains the external OAuth provider configuration plus the
// admin allow-list evaluated at account creation.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	AdminEmails  []string
}

// SessionConfig contains cookie session configuration.
type SessionConfig struct {
	Secret string
	MaxAge time.Duration
}

// SyncConfig contains catalog sync tuning and the cron endpoint secret.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SyncConfig struct {
	CronSecret   string
	Schedule     string
	FullSchedule string
	PageSize     int
	LatestCount  int
	BatchSize    int
	BatchDelay   time.Duration
}

// RabbitMQConfig contains RabbitMQ connection and queue configuration.
// Publishing is disabled when Host is empty.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// AdminEmailSet returns the allow-listed admin emails as a lookup set,
// lowercased for comparison against provider-verified addresses.
func (c *OAuthConfig) AdminEmailSet() map[string]bool {
	set := make(map[string]bool, len(c.AdminEmails))
	for _, email := range c.AdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			set[email] = true
		}
	}
	return set
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.templatesdir", "./web/templates")
	viper.SetDefault("server.staticdir", "./web/static")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "reelgrid")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Streamhost
	viper.SetDefault("streamhost.baseurl", "https://streamhost.example.com/api/v1")
	viper.SetDefault("streamhost.token", "")
	viper.SetDefault("streamhost.timeout", 30*time.Second)

	// OAuth (GitHub-style defaults; any code-flow provider works)
	viper.SetDefault("oauth.clientid", "")
	viper.SetDefault("oauth.clientsecret", "")
	viper.SetDefault("oauth.authurl", "https://github.com/login/oauth/authorize")
	viper.SetDefault("oauth.tokenurl", "https://github.com/login/oauth/access_token")
	viper.SetDefault("oauth.userinfourl", "https://api.github.com/user")
	viper.SetDefault("oauth.redirecturl", "http://localhost:8080/auth/callback")
	viper.SetDefault("oauth.adminemails", []string{})

	// Session
	viper.SetDefault("session.secret", "")
	viper.SetDefault("session.maxage", 7*24*time.Hour)

	// Sync
	viper.SetDefault("sync.cronsecret", "")
	viper.SetDefault("sync.schedule", "")
	viper.SetDefault("sync.fullschedule", "")
	viper.SetDefault("sync.pagesize", 100)
	viper.SetDefault("sync.latestcount", 20)
	viper.SetDefault("sync.batchsize", 10)
	viper.SetDefault("sync.batchdelay", 1*time.Second)

	// RabbitMQ (optional)
	viper.SetDefault("rabbitmq.host", "")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "reelgrid.catalog")
	viper.SetDefault("rabbitmq.queue", "reelgrid.catalog.sync")
	viper.SetDefault("rabbitmq.routingkey", "catalog.sync.completed")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
