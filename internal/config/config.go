package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Gemini       GeminiConfig
	Storage      StorageConfig
	RateLimit    RateLimitConfig
	Fetch        FetchConfig
	Process      ProcessConfig
	Housekeeping HousekeepingConfig
	Log          LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
	RetryDelay  time.Duration
}

type StorageConfig struct {
	ReportPath     string
	MaxFileSize    int64
	ArchiveReports bool
}

// RateLimitConfig holds both the daily quotas checked against the request log
// and the short burst guard applied in front of the process endpoint.
type RateLimitConfig struct {
	GlobalMax   int
	PerIPMax    int
	Window      time.Duration
	BurstMax    int
	BurstWindow time.Duration
}

type FetchConfig struct {
	Timeout time.Duration
}

type ProcessConfig struct {
	Capacity int
	TTL      time.Duration
}

type HousekeepingConfig struct {
	Interval     time.Duration
	CacheMaxAge  time.Duration
	ReportMaxAge time.Duration
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			Env:          getEnv("ENV", "development"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "career_assistant"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.4),
			MaxRetries:  getEnvAsInt("GEMINI_MAX_RETRIES", 3),
			RetryDelay:  getEnvAsDuration("GEMINI_RETRY_DELAY", "2s"),
		},
		Storage: StorageConfig{
			ReportPath:     getEnv("REPORT_PATH", "./reports"),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			ArchiveReports: getEnvAsBool("ARCHIVE_REPORTS", false),
		},
		RateLimit: RateLimitConfig{
			GlobalMax:   getEnvAsInt("GLOBAL_DAILY_LIMIT", 10),
			PerIPMax:    getEnvAsInt("PER_IP_DAILY_LIMIT", 2),
			Window:      getEnvAsDuration("RATE_LIMIT_WINDOW", "24h"),
			BurstMax:    getEnvAsInt("BURST_LIMIT", 20),
			BurstWindow: getEnvAsDuration("BURST_WINDOW", "1m"),
		},
		Fetch: FetchConfig{
			Timeout: getEnvAsDuration("FETCH_TIMEOUT", "30s"),
		},
		Process: ProcessConfig{
			Capacity: getEnvAsInt("PROCESS_TABLE_CAPACITY", 1000),
			TTL:      getEnvAsDuration("PROCESS_TABLE_TTL", "6h"),
		},
		Housekeeping: HousekeepingConfig{
			Interval:     getEnvAsDuration("HOUSEKEEPING_INTERVAL", "0s"),
			CacheMaxAge:  getEnvAsDuration("CACHE_MAX_AGE", "24h"),
			ReportMaxAge: getEnvAsDuration("REPORT_MAX_AGE", "168h"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// DatabaseConfigured reports whether store credentials are present. It says
// nothing about whether the database is reachable.
func (c *Config) DatabaseConfigured() bool {
	return c.Database.Host != "" && c.Database.User != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
