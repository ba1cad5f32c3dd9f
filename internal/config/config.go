package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Remote    RemoteConfig    `yaml:"remote"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Kiosk     KioskConfig     `yaml:"kiosk"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains the kiosk HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RemoteConfig points at the FDMS backend
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig selects the session store backing
type SessionConfig struct {
	Store      string `yaml:"store"` // "memory" or "redis"
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// RedisConfig contains Redis connection settings (store: redis)
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig contains kiosk admin token settings
type JWTConfig struct {
	Secret           string `yaml:"secret"`
	AdminTokenExpiry int    `yaml:"admin_token_expiry_minutes"`
}

// KioskConfig contains workflow tuning
type KioskConfig struct {
	SuccessExitMS      int `yaml:"success_exit_ms"`
	IdleSessionMinutes int `yaml:"idle_session_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RefreshSettings   string `yaml:"refresh_settings"`
	SweepIdleSessions string `yaml:"sweep_idle_sessions"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Remote
	if val := os.Getenv("REMOTE_API_URL"); val != "" {
		c.Remote.BaseURL = val
	}
	if val := os.Getenv("REMOTE_API_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Remote.TimeoutSeconds)
	}

	// Session
	if val := os.Getenv("SESSION_STORE"); val != "" {
		c.Session.Store = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		fmt.Sscanf(val, "%d", &c.Redis.DB)
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Remote validation
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = 15
	}

	// Session validation
	switch c.Session.Store {
	case "", "memory":
		c.Session.Store = "memory"
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis session store")
		}
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Store)
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 12 * 60
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AdminTokenExpiry <= 0 {
		c.JWT.AdminTokenExpiry = 60
	}

	// Kiosk defaults
	if c.Kiosk.SuccessExitMS <= 0 {
		c.Kiosk.SuccessExitMS = 3000
	}
	if c.Kiosk.IdleSessionMinutes <= 0 {
		c.Kiosk.IdleSessionMinutes = 30
	}

	// Scheduler defaults
	if c.Scheduler.RefreshSettings == "" {
		c.Scheduler.RefreshSettings = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.SweepIdleSessions == "" {
		c.Scheduler.SweepIdleSessions = "0 */5 * * * *" // Every 5 minutes
	}

	return nil
}

// GetServerAddress returns the kiosk HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RemoteTimeout returns the FDMS call timeout as a duration
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// SessionTTL returns the session store TTL as a duration
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// AdminTokenExpiry returns the kiosk admin token lifetime
func (c *Config) AdminTokenExpiry() time.Duration {
	return time.Duration(c.JWT.AdminTokenExpiry) * time.Minute
}

// SuccessExit returns the success-screen dwell time
func (c *Config) SuccessExit() time.Duration {
	return time.Duration(c.Kiosk.SuccessExitMS) * time.Millisecond
}

// IdleSessionTTL returns how long a workflow session may idle before sweep
func (c *Config) IdleSessionTTL() time.Duration {
	return time.Duration(c.Kiosk.IdleSessionMinutes) * time.Minute
}
