package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds every setting the API reads from the environment.
type Config struct {
	Env           string
	Port          int
	LogLevel      string
	PublicBaseURL string
	CORSOrigins   []string

	Database Database
	Auth     Auth
	Storage  Storage
	SMTP     SMTP
}

type Database struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the connection string handed to the postgres driver.
// DATABASE_URL wins over the individual settings when present.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type Auth struct {
	JWTSecret    string
	SessionTTL   time.Duration
	MagicLinkTTL time.Duration
}

type Storage struct {
	Dir            string
	URLTTL         time.Duration
	MaxUploadBytes int64
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != ""
}

const defaultJWTSecret = "dev-secret-change-me"

// Load reads the configuration from the process environment. A .env file in
// the working directory is loaded by godotenv before Load runs.
func Load() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", EnvDevelopment),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "https://*,http://*")),
		Database: Database{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getenv("DB_HOST", getenv("BLUEPRINT_DB_HOST", "localhost")),
			Port:     getenv("DB_PORT", getenv("BLUEPRINT_DB_PORT", "5432")),
			User:     getenv("DB_USER", getenv("BLUEPRINT_DB_USERNAME", "postgres")),
			Password: getenv("DB_PASSWORD", getenv("BLUEPRINT_DB_PASSWORD", "")),
			Name:     getenv("DB_NAME", getenv("BLUEPRINT_DB_DATABASE", "kanban")),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Auth: Auth{
			JWTSecret: getenv("JWT_SECRET", defaultJWTSecret),
		},
		Storage: Storage{
			Dir: getenv("STORAGE_DIR", "./data/objects"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	var err error
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Auth.SessionTTL, err = durationEnv("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.MagicLinkTTL, err = durationEnv("MAGIC_LINK_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Storage.URLTTL, err = durationEnv("STORAGE_URL_TTL", time.Hour); err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.Storage.MaxUploadBytes = int64(maxUpload)

	if cfg.Env == EnvProduction && cfg.Auth.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// IsDevelopment reports whether development conveniences (like returning
// magic links in responses) are enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
