package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is everything havend reads at startup. Values resolve in three
// layers: built-in defaults, then the YAML file, then HAVEN_* environment
// variables. Secrets should arrive via the environment, never the file.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// DatabaseConfig selects the SQLite file and its pragmas.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"` // seconds
}

// APIConfig is the HTTP listener.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig holds HTTP server timeouts, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

func (t APITimeoutConfig) ReadTimeout() time.Duration  { return time.Duration(t.Read) * time.Second }
func (t APITimeoutConfig) WriteTimeout() time.Duration { return time.Duration(t.Write) * time.Second }
func (t APITimeoutConfig) IdleTimeout() time.Duration  { return time.Duration(t.Idle) * time.Second }

// CORSConfig lists what cross-origin callers may do. Empty origins means
// allow-all, which is only appropriate for local development.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig tunes the dashboard event feed.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int64  `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"` // seconds
	PongTimeout    int    `yaml:"pong_timeout"`  // seconds
}

// MQTTConfig points at the event broker. With Enabled false nothing
// connects and status-change events simply are not published.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// TelemetryConfig points at InfluxDB for execution metrics. Optional in
// the same way MQTT is.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// LoggingConfig shapes slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr
}

// SecurityConfig groups authentication settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig signs access tokens. Secret has no default; set it via
// HAVEN_JWT_SECRET.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// Load resolves the full configuration from path plus the environment.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/haven.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Timeouts: APITimeoutConfig{Read: 30, Write: 30, Idle: 60},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "haven-core",
			QoS:      1,
		},
		Telemetry: TelemetryConfig{
			URL:    "http://localhost:8086",
			Bucket: "haven",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{AccessTokenTTL: 15},
		},
	}
}

// applyEnv overlays HAVEN_* environment variables onto the config.
// The table covers exactly the values operators override per host:
// paths, endpoints and credentials.
func (c *Config) applyEnv() {
	strVars := map[string]*string{
		"HAVEN_DATABASE_PATH":   &c.Database.Path,
		"HAVEN_API_HOST":        &c.API.Host,
		"HAVEN_MQTT_HOST":       &c.MQTT.Host,
		"HAVEN_MQTT_USERNAME":   &c.MQTT.Username,
		"HAVEN_MQTT_PASSWORD":   &c.MQTT.Password,
		"HAVEN_TELEMETRY_TOKEN": &c.Telemetry.Token,
		"HAVEN_JWT_SECRET":      &c.Security.JWT.Secret,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("HAVEN_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.API.Port = port
		}
	}
}

// Validate rejects configurations the service cannot safely run with.
// All problems are reported at once rather than one per restart.
func (c *Config) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Database.Path == "" {
		bad("database.path is required")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		bad("api.port must be between 1 and 65535")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("logging.level %q is not valid", c.Logging.Level)
	}
	if c.MQTT.Enabled {
		if c.MQTT.Host == "" {
			bad("mqtt.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			bad("mqtt.qos must be 0, 1 or 2")
		}
	}
	if c.Telemetry.Enabled && c.Telemetry.URL == "" {
		bad("telemetry.url is required when telemetry is enabled")
	}
	if c.Security.JWT.AccessTokenTTL <= 0 {
		bad("security.jwt.access_token_ttl must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
