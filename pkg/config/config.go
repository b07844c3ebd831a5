package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Relay struct {
		Enabled           bool          `yaml:"enabled"`
		PingInterval      time.Duration `yaml:"ping_interval"`
		PongTimeout       time.Duration `yaml:"pong_timeout"`
		WriteTimeout      time.Duration `yaml:"write_timeout"`
		MessagesPerSecond float64       `yaml:"messages_per_second"`
		Burst             int           `yaml:"burst"`
		MaxMessageBytes   int64         `yaml:"max_message_bytes"`
	} `yaml:"relay"`

	Feed struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Timeout      time.Duration `yaml:"timeout"`       // initial read
		PollTimeout  time.Duration `yaml:"poll_timeout"`  // re-reads while resolving
		PollAttempts int           `yaml:"poll_attempts"` // re-reads after the initial fetch
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"feed"`

	OsuAPI struct {
		BaseURL string        `yaml:"base_url"`
		Key     string        `yaml:"key"`
		UserID  int           `yaml:"user_id"` // informational only
		Timeout time.Duration `yaml:"timeout"`

		CircuitBreaker struct {
			FailureThreshold int           `yaml:"failure_threshold"`
			OpenTimeout      time.Duration `yaml:"open_timeout"`
		} `yaml:"circuit_breaker"`
	} `yaml:"osu_api"`

	Cooldown struct {
		Window         time.Duration `yaml:"window"`
		Backend        string        `yaml:"backend"` // memory | redis
		ReservationTTL time.Duration `yaml:"reservation_ttl"`
	} `yaml:"cooldown"`

	Dispatcher struct {
		Workers        int           `yaml:"workers"`
		QueueSize      int           `yaml:"queue_size"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"dispatcher"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests, 0 = unlimited
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Relay
	if c.Relay.Enabled {
		if c.Relay.PingInterval <= 0 {
			return fmt.Errorf("relay.ping_interval must be > 0")
		}
		if c.Relay.PongTimeout <= c.Relay.PingInterval {
			return fmt.Errorf("relay.pong_timeout must be > relay.ping_interval")
		}
		if c.Relay.WriteTimeout <= 0 {
			return fmt.Errorf("relay.write_timeout must be > 0")
		}
		if c.Relay.MessagesPerSecond <= 0 {
			return fmt.Errorf("relay.messages_per_second must be > 0")
		}
		if c.Relay.Burst <= 0 {
			return fmt.Errorf("relay.burst must be > 0")
		}
	}

	// Feed
	if c.Feed.Host == "" {
		return fmt.Errorf("feed.host must not be empty")
	}
	if c.Feed.Port <= 0 || c.Feed.Port > 65535 {
		return fmt.Errorf("feed.port must be within 1..65535")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be > 0")
	}
	if c.Feed.PollTimeout <= 0 {
		return fmt.Errorf("feed.poll_timeout must be > 0")
	}
	if c.Feed.PollAttempts < 1 || c.Feed.PollAttempts > 10 {
		return fmt.Errorf("feed.poll_attempts must be within 1..10")
	}
	if c.Feed.PollInterval < 0 {
		return fmt.Errorf("feed.poll_interval must be >= 0")
	}

	// osu! API
	if c.OsuAPI.BaseURL == "" {
		return fmt.Errorf("osu_api.base_url must not be empty")
	}
	if c.OsuAPI.Timeout <= 0 {
		return fmt.Errorf("osu_api.timeout must be > 0")
	}
	if c.OsuAPI.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("osu_api.circuit_breaker.failure_threshold must be > 0")
	}
	if c.OsuAPI.CircuitBreaker.OpenTimeout <= 0 {
		return fmt.Errorf("osu_api.circuit_breaker.open_timeout must be > 0")
	}

	// Cooldown
	if c.Cooldown.Window < 0 {
		return fmt.Errorf("cooldown.window must be >= 0")
	}
	switch c.Cooldown.Backend {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when cooldown.backend=redis")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when cooldown.backend=redis")
		}
	default:
		return fmt.Errorf("cooldown.backend must be memory or redis, got %q", c.Cooldown.Backend)
	}
	if c.Cooldown.ReservationTTL <= 0 {
		return fmt.Errorf("cooldown.reservation_ttl must be > 0")
	}

	// Dispatcher
	if c.Dispatcher.Workers <= 0 {
		return fmt.Errorf("dispatcher.workers must be > 0")
	}
	if c.Dispatcher.QueueSize < 0 {
		return fmt.Errorf("dispatcher.queue_size must be >= 0")
	}
	if c.Dispatcher.RequestTimeout <= 0 {
		return fmt.Errorf("dispatcher.request_timeout must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within 0..1")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// FeedURL is the JSON endpoint of the local live feed.
func (c *Config) FeedURL() string {
	return fmt.Sprintf("http://%s:%d/json", c.Feed.Host, c.Feed.Port)
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// no file, defaults plus environment
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second

	cfg.Relay.Enabled = true
	cfg.Relay.PingInterval = 30 * time.Second
	cfg.Relay.PongTimeout = 60 * time.Second
	cfg.Relay.WriteTimeout = 10 * time.Second
	cfg.Relay.MessagesPerSecond = 5
	cfg.Relay.Burst = 10
	cfg.Relay.MaxMessageBytes = 16 * 1024

	// gosumemory / tosu defaults
	cfg.Feed.Host = "127.0.0.1"
	cfg.Feed.Port = 24050
	cfg.Feed.Timeout = 5 * time.Second
	cfg.Feed.PollTimeout = 2 * time.Second
	cfg.Feed.PollAttempts = 1
	cfg.Feed.PollInterval = 200 * time.Millisecond

	cfg.OsuAPI.BaseURL = "https://osu.ppy.sh/api"
	cfg.OsuAPI.Timeout = 5 * time.Second
	cfg.OsuAPI.CircuitBreaker.FailureThreshold = 5
	cfg.OsuAPI.CircuitBreaker.OpenTimeout = 30 * time.Second

	cfg.Cooldown.Window = 45 * time.Second
	cfg.Cooldown.Backend = "memory"
	cfg.Cooldown.ReservationTTL = 30 * time.Second

	cfg.Dispatcher.Workers = 1
	cfg.Dispatcher.QueueSize = 64
	cfg.Dispatcher.RequestTimeout = 30 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 20
	cfg.RateLimiting.Burst = 40
	cfg.RateLimiting.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() error {
	if addr := os.Getenv("NOWPLAYING_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("NOWPLAYING_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if key := os.Getenv("NOWPLAYING_OSU_API_KEY"); key != "" {
		c.OsuAPI.Key = key
	}
	if raw := os.Getenv("NOWPLAYING_OSU_USER_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("NOWPLAYING_OSU_USER_ID: %w", err)
		}
		c.OsuAPI.UserID = id
	}
	if raw := os.Getenv("NOWPLAYING_FEED_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("NOWPLAYING_FEED_PORT: %w", err)
		}
		c.Feed.Port = port
	}
	if raw := os.Getenv("NOWPLAYING_COOLDOWN"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("NOWPLAYING_COOLDOWN: %w", err)
		}
		c.Cooldown.Window = window
	}
	if addr := os.Getenv("NOWPLAYING_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	return nil
}
