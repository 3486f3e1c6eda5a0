package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	App       AppConfig       `yaml:"app"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	CORS      CORSConfig      `yaml:"cors"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	LogLevel  string `yaml:"log_level"`
}

// DashboardConfig holds event dashboard settings
type DashboardConfig struct {
	Timezone       string        `yaml:"timezone"`
	OrderBy        string        `yaml:"order_by"`
	OrderDesc      bool          `yaml:"order_desc"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
	ReaperInterval time.Duration `yaml:"reaper_interval"`
	AdminLogsLimit int           `yaml:"admin_logs_limit"`
}

// CORSConfig holds the allowed frontend origins
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "events_admin",
			SSLMode: "disable",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		App: AppConfig{
			LogLevel: "info",
		},
		Dashboard: DashboardConfig{
			Timezone:       "Local",
			OrderBy:        "start_value",
			OrderDesc:      true,
			SessionIdleTTL: 12 * time.Hour,
			ReaperInterval: 10 * time.Minute,
			AdminLogsLimit: 50,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000", // Local development
				"http://127.0.0.1:3000",
			},
		},
	}
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables, the latter taking precedence
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	config.Database.Host = getEnv("DB_HOST", config.Database.Host)
	config.Database.Port = getEnv("DB_PORT", config.Database.Port)
	config.Database.User = getEnv("DB_USER", config.Database.User)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.DBName = getEnv("DB_NAME", config.Database.DBName)
	config.Database.SSLMode = getEnv("DB_SSLMODE", config.Database.SSLMode)

	config.Server.Port = getEnv("SERVER_PORT", config.Server.Port)

	config.App.JWTSecret = getEnv("JWT_SECRET", config.App.JWTSecret)
	config.App.LogLevel = getEnv("LOG_LEVEL", config.App.LogLevel)

	config.Dashboard.Timezone = getEnv("DASHBOARD_TIMEZONE", config.Dashboard.Timezone)
	config.Dashboard.OrderBy = getEnv("DASHBOARD_ORDER_BY", config.Dashboard.OrderBy)

	var err error
	if config.Dashboard.OrderDesc, err = getEnvBool("DASHBOARD_ORDER_DESC", config.Dashboard.OrderDesc); err != nil {
		return nil, err
	}
	if config.Dashboard.SessionIdleTTL, err = getEnvDuration("SESSION_IDLE_TTL", config.Dashboard.SessionIdleTTL); err != nil {
		return nil, err
	}
	if config.Dashboard.ReaperInterval, err = getEnvDuration("SESSION_REAPER_INTERVAL", config.Dashboard.ReaperInterval); err != nil {
		return nil, err
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowedOrigins = splitList(origins)
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, frontendURL)
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Dashboard.SessionIdleTTL <= 0 || config.Dashboard.ReaperInterval <= 0 {
		return nil, fmt.Errorf("session idle TTL and reaper interval must be positive")
	}

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
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

// Location returns the time zone used to interpret filter dates and
// datetime form values
func (c *Config) Location() (*time.Location, error) {
	if c.Dashboard.Timezone == "" || c.Dashboard.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_TIMEZONE %q: %w", c.Dashboard.Timezone, err)
	}
	return loc, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
