package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by questions.source and results.sink.
const (
	BackendStatic   = "static"
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendXLSX     = "xlsx"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Admin struct {
		Password             string `yaml:"password"`
		PasswordHash         string `yaml:"password_hash"`
		AllowDefaultPassword bool   `yaml:"allow_default_password"`
		SessionTTL           string `yaml:"session_ttl"`
	} `yaml:"admin"`
	Questions struct {
		Source   string `yaml:"source"`
		Path     string `yaml:"path"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"questions"`
	Results struct {
		Sink string `yaml:"sink"`
		Path string `yaml:"path"`
		Key  string `yaml:"key"`
	} `yaml:"results"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default is the configuration used when no file is given: static questions,
// a local CSV sink, and no admin secret.
func Default() Config {
	cfg := Config{}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QCM_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("QCM_ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Questions.Source == "" {
		cfg.Questions.Source = BackendStatic
	}
	if cfg.Results.Sink == "" {
		cfg.Results.Sink = BackendCSV
	}
	if cfg.Results.Path == "" {
		switch cfg.Results.Sink {
		case BackendCSV:
			cfg.Results.Path = "resultats_qcm.csv"
		case BackendXLSX:
			cfg.Results.Path = "QCM_Algo_Resultats.xlsx"
		}
	}
	if cfg.Questions.Path == "" && cfg.Questions.Source == BackendXLSX && cfg.Results.Sink == BackendXLSX {
		cfg.Questions.Path = cfg.Results.Path
	}
}

// Validate checks that every selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Questions.Source {
	case BackendStatic, BackendMemory:
	case BackendCSV, BackendXLSX:
		if c.Questions.Path == "" {
			return fmt.Errorf("questions.path required for %s source", c.Questions.Source)
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres url not configured")
		}
	default:
		return fmt.Errorf("unknown questions source %q", c.Questions.Source)
	}

	switch c.Results.Sink {
	case BackendMemory:
	case BackendCSV, BackendXLSX:
		if c.Results.Path == "" {
			return fmt.Errorf("results.path required for %s sink", c.Results.Sink)
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres url not configured")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr not configured")
		}
	default:
		return fmt.Errorf("unknown results sink %q", c.Results.Sink)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
