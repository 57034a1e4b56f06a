package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the engagement service.
type Config struct {
	HTTPPort string

	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBDatabase        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ServerSecret feeds reactor token derivation and credential encryption.
	ServerSecret string

	// TelegramAPIHost is overridable so tests can point the relay at a stub.
	TelegramAPIHost string
	RelayTimeout    time.Duration

	// BaseDomain builds canonical site URLs in notification messages.
	BaseDomain string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvAsInt("DB_PORT", 3306),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBDatabase:        getEnv("DB_DATABASE", "inkwell_db"),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ServerSecret: getEnv("SERVER_SECRET", ""),

		TelegramAPIHost: getEnv("TELEGRAM_API_HOST", "https://api.telegram.org"),
		RelayTimeout:    getEnvAsDuration("RELAY_TIMEOUT", 5*time.Second),

		BaseDomain: getEnv("BASE_DOMAIN", "inkwell.blog"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %v, falling back to default %d", key, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration for %s: %v, falling back to default %s", key, err, defaultValue)
		return defaultValue
	}
	return value
}
