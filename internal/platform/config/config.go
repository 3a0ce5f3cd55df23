package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	StoreBackend   string
	RequestTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	App      AppInfo
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers string
	Topic   string
	Acks    string
}

// AppInfo feeds the API documentation endpoint.
type AppInfo struct {
	Name     string
	Desc     string
	Version  string
	URL      string
	DevName  string
	DevEmail string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers and durations fall back to their defaults.
func FromEnv() Server {
	return Server{
		Addr:           getEnv("DUMMY_ADDR", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StoreBackend:   getEnv("STORE_BACKEND", BackendMemory),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "dummy.events"),
			Acks:    getEnv("KAFKA_ACKS", "all"),
		},
		App: AppInfo{
			Name:     getEnv("APP_NAME", "dummy-api"),
			Desc:     getEnv("APP_DESC", "CRUD and lookup API for dummy records"),
			Version:  getEnv("APP_VERSION", "v1"),
			URL:      getEnv("APP_URL", "http://localhost:8080"),
			DevName:  getEnv("APP_DEV_NAME", ""),
			DevEmail: getEnv("APP_DEV_EMAIL", ""),
		},
	}
}

// Validate reports settings the server cannot start with.
func (s Server) Validate() error {
	switch s.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if s.Database.URL == "" {
			return fmt.Errorf("STORE_BACKEND=%s requires DATABASE_URL", s.StoreBackend)
		}
	case BackendRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("STORE_BACKEND=%s requires REDIS_URL", s.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.StoreBackend)
	}
	if s.Kafka.Brokers != "" && s.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}
	return nil
}

// KafkaEnabled reports whether lifecycle events should be published.
func (s Server) KafkaEnabled() bool {
	return s.Kafka.Brokers != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
