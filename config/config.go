package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `yaml:"kafka" envPrefix:"KAFKA_"`
	Flights  FlightsConfig  `yaml:"flights" envPrefix:"FLIGHTS_"`
	Auth     AuthConfig     `yaml:"auth" envPrefix:"AUTH_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Tracing  TracingConfig  `yaml:"tracing" envPrefix:"TRACING_"`
	Weather  WeatherConfig  `yaml:"weather" envPrefix:"WEATHER_"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"ADDRESS"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig leaves the flight cache off when Addr is empty.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// KafkaConfig leaves event publishing off when Brokers is empty.
type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	BookingEventsTopic string   `yaml:"booking_events_topic" env:"BOOKING_EVENTS_TOPIC"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" env:"GROUP_ID"`
	PublishAttempts    int      `yaml:"publish_attempts" env:"PUBLISH_ATTEMPTS"`
}

type FlightsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
}

type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// TracingConfig leaves span export off when Endpoint is empty.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	Insecure    bool   `yaml:"insecure" env:"INSECURE"`
}

type WeatherConfig struct {
	APIKey      string `yaml:"api_key" env:"API_KEY"`
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	CityIDsPath string `yaml:"city_ids_path" env:"CITY_IDS_PATH"`
}

func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Address: ":8080"},
		Storage:  StorageConfig{Driver: StoragePostgres},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "skybooking", SSLMode: "disable"},
		Kafka: KafkaConfig{
			BookingEventsTopic: "booking-events",
			NotificationsTopic: "booking-notifications",
			GroupID:            "skybooking-worker",
			PublishAttempts:    3,
		},
		Flights: FlightsConfig{CacheTTLSeconds: 30},
		Auth:    AuthConfig{BcryptCost: 10},
		Log:     LogConfig{Level: "info", Format: "text"},
		Tracing: TracingConfig{ServiceName: "skybooking"},
		Weather: WeatherConfig{BaseURL: "https://api.openweathermap.org/data/2.5/weather"},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// SKYBOOKING_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SKYBOOKING_"}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("config: postgres storage needs database host and name")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTP.Address == "" {
		return errors.New("config: http address is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("config: bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}
