package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
	Booking  BookingConfig  `yaml:"booking"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type BookingConfig struct {
	// HorizonDays bounds open-ended recurrence patterns.
	HorizonDays int `yaml:"horizon_days"`
	// MaxInstances caps a single recurrence expansion.
	MaxInstances int `yaml:"max_instances"`
	// TxRetries is the attempt budget for serialization aborts.
	TxRetries int `yaml:"tx_retries"`
}

// Load reads the YAML config, expanding ${ENV} references first. A
// missing .env file is not an error; DATABASE_URL always wins over the
// YAML DSN so deployments can keep credentials out of the file.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database dsn is required (config database.dsn or DATABASE_URL)")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "tailtown"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Booking.HorizonDays == 0 {
		c.Booking.HorizonDays = 180
	}
	if c.Booking.MaxInstances == 0 {
		c.Booking.MaxInstances = 100
	}
	if c.Booking.TxRetries == 0 {
		c.Booking.TxRetries = 3
	}
}
