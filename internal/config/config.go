package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTP      `yaml:"http"`
	Game      Game      `yaml:"game"`
	Session   Session   `yaml:"session"`
	Redis     Redis     `yaml:"redis"`
	SQLite    SQLite    `yaml:"sqlite"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	WebDir          string        `yaml:"web-dir" env:"WEB_DIR" env-default:""`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Game struct {
	// ComputerMoveDelay paces the computer's reply.
	ComputerMoveDelay time.Duration `yaml:"computer-move-delay" env:"COMPUTER_MOVE_DELAY" env-default:"600ms"`
	DefaultMode       string        `yaml:"default-mode" env:"DEFAULT_MODE" env-default:"two_player"`
}

type Session struct {
	Secret      string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TokenTTL    time.Duration `yaml:"token-ttl" env:"SESSION_TOKEN_TTL" env-default:"24h"`
	IdleTimeout time.Duration `yaml:"idle-timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`
	// PongWait bounds how long a websocket client may go without answering a ping.
	PongWait    time.Duration `yaml:"pong-wait" env:"SESSION_PONG_WAIT" env-default:"30s"`
}

type Redis struct {
	// Addr left empty disables event publishing.
	Addr string `yaml:"addr" env:"REDIS_CONNSTRING" env-default:""`
}

type SQLite struct {
	DSN string `yaml:"dsn" env:"SQLITE_DSN" env-default:"file::memory:?cache=shared"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint     string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"otel-collector:4317"`
	StdoutTraces bool   `yaml:"stdout-traces" env:"OTEL_STDOUT_TRACES" env-default:"false"`
	ServiceName  string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
}

// Load reads the YAML file at path, if any, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrMissingSecret is returned when no session signing secret is configured.
var ErrMissingSecret = errors.New("session secret is required (SESSION_SECRET)")

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		return ErrMissingSecret
	}
	return nil
}

// MustLoad - load the configuration or panic.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
