package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		ReadingsTopic string   `yaml:"readings_topic"`
		AlertsTopic   string   `yaml:"alerts_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Meter struct {
		GatewayURL     string        `yaml:"gateway_url"`
		APIKey         string        `yaml:"api_key"`
		Devices        []string      `yaml:"devices"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"meter"`
	Forecast struct {
		Backend         string        `yaml:"backend"` // "local" or "http"
		ModelDir        string        `yaml:"model_dir"`
		ModelServiceURL string        `yaml:"model_service_url"`
		Timeout         time.Duration `yaml:"timeout"`
		Horizon         int           `yaml:"horizon"`
		Lookback        int           `yaml:"lookback"`
		MaxLagHours     int           `yaml:"max_lag_hours"`
		CriticalLoad    float64       `yaml:"critical_load"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		Redis           struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"forecast"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("METER_API_KEY"); v != "" {
		c.Meter.APIKey = v
	}
	if v := os.Getenv("METER_DEVICES"); v != "" {
		c.Meter.Devices = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_READINGS_TOPIC"); v != "" {
		c.Kafka.ReadingsTopic = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Forecast.ModelDir = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Forecast.Horizon <= 0 {
		c.Forecast.Horizon = 24
	}
	if c.Forecast.Lookback <= 0 {
		c.Forecast.Lookback = 72
	}
	if c.Forecast.MaxLagHours <= 0 {
		c.Forecast.MaxLagHours = 24
	}
	if c.Forecast.CriticalLoad <= 0 {
		c.Forecast.CriticalLoad = 500
	}
	if c.Forecast.CacheTTL <= 0 {
		c.Forecast.CacheTTL = 5 * time.Minute
	}
	if c.Forecast.Backend == "" {
		c.Forecast.Backend = "local"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Forecast.Backend != "local" && c.Forecast.Backend != "http" {
		return fmt.Errorf("forecast.backend must be 'local' or 'http', got '%s'", c.Forecast.Backend)
	}
	// The scaler artifact always loads from disk, even when the tree,
	// sequence, and fusion models are served over HTTP.
	if c.Forecast.ModelDir == "" {
		return fmt.Errorf("forecast.model_dir is required")
	}
	if c.Forecast.Backend == "http" && c.Forecast.ModelServiceURL == "" {
		return fmt.Errorf("forecast.model_service_url is required for http backend")
	}
	if c.Meter.GatewayURL != "" && len(c.Meter.Devices) == 0 {
		return fmt.Errorf("meter.devices cannot be empty when gateway_url is set")
	}
	return nil
}
