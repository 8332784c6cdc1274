package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// EnvPrefix is prepended to every environment override, e.g.
// SHORTLINK_POSTGRES_PASSWORD.
const EnvPrefix = "SHORTLINK_"

type Config struct {
	Env            string    `yaml:"env" env:"ENV"`
	BaseURL        string    `yaml:"base_url" env:"BASE_URL"`
	Storage        string    `yaml:"storage" env:"STORAGE"`
	MigrationsPath string    `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	DocsPath       string    `yaml:"docs_path" env:"DOCS_PATH"`
	ShortCode      ShortCode `yaml:"short_code" envPrefix:"SHORT_CODE_"`
	Cache          Cache     `yaml:"cache" envPrefix:"CACHE_"`
	Clicks         Clicks    `yaml:"clicks" envPrefix:"CLICKS_"`
	RateLimit      RateLimit `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Cleanup        Cleanup   `yaml:"cleanup" envPrefix:"CLEANUP_"`
	HTTPServer     `yaml:"http_server" envPrefix:"HTTP_SERVER_"`
	Postgres       `yaml:"postgres" envPrefix:"POSTGRES_"`
}

type ShortCode struct {
	Length      int `yaml:"length" env:"LENGTH"`
	MaxAttempts int `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
}

type Cache struct {
	Capacity int `yaml:"capacity" env:"CAPACITY"`
}

type Clicks struct {
	QueueSize    int           `yaml:"queue_size" env:"QUEUE_SIZE"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

type RateLimit struct {
	Limit      int           `yaml:"limit" env:"LIMIT"`
	Window     time.Duration `yaml:"window" env:"WINDOW"`
	PurgeAfter int           `yaml:"purge_after" env:"PURGE_AFTER"`
}

// Cleanup controls the expired-URL janitor. A zero interval disables it.
type Cleanup struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" env:"PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" env:"MAX_HEADER_BYTES"`
	CertFile       string        `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile        string        `yaml:"key_file" env:"KEY_FILE"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	DB              string        `yaml:"db" env:"DB"`
	SSLMode         string        `yaml:"sslmode" env:"SSLMODE"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"CONNECT_ATTEMPTS"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"CONNECT_BACKOFF"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	ConnectAttempts: 5,
	ConnectBackoff:  time.Second,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Load reads the YAML file at path on top of the defaults and then applies
// SHORTLINK_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("%s: failed to parse environment: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if c.ShortCode.Length < 1 {
		errs = append(errs, errors.New("short_code.length must be positive"))
	}
	if c.ShortCode.MaxAttempts < 1 {
		errs = append(errs, errors.New("short_code.max_attempts must be positive"))
	}
	if c.Cache.Capacity < 1 {
		errs = append(errs, errors.New("cache.capacity must be positive"))
	}
	if c.Clicks.QueueSize < 1 {
		errs = append(errs, errors.New("clicks.queue_size must be positive"))
	}
	if c.RateLimit.Limit < 1 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.limit and rate_limit.window must be positive"))
	}

	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.Storage = StoragePostgres
	cfg.MigrationsPath = "file://migrations"
	cfg.DocsPath = "./docs/swagger.yml"
	cfg.ShortCode = ShortCode{
		Length:      6,
		MaxAttempts: 5,
	}
	cfg.Cache = Cache{Capacity: 1000}
	cfg.Clicks = Clicks{
		QueueSize:    1024,
		WriteTimeout: 2 * time.Second,
	}
	cfg.RateLimit = RateLimit{
		Limit:      60,
		Window:     time.Minute,
		PurgeAfter: 5,
	}
	cfg.Cleanup = Cleanup{Interval: 10 * time.Minute}
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
}
