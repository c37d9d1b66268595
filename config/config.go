// Package config membaca konfigurasi aplikasi dari environment (dan .env jika ada).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAutoReplyTemplateID adalah template auto-reply EmailJS bawaan.
const DefaultAutoReplyTemplateID = "template_z2e7nww"

// Config menampung seluruh nilai konfigurasi aplikasi.
type Config struct {
	Env  string
	Port string

	MongoURI    string
	MongoDBName string

	Postgres PostgresConfig
	Email    EmailConfig

	AllowedOrigins []string
	BodyLimitMB    int64
	UploadsDir     string
	RequestTimeout time.Duration
}

// PostgresConfig untuk inbox form kontak. Kosong (Host == "") berarti dimatikan.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled bernilai true jika DB_HOST diisi.
func (p PostgresConfig) Enabled() bool { return p.Host != "" }

// DSN membentuk connection string untuk gorm postgres driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		p.Host, p.User, p.Password, p.Name, p.Port)
}

// EmailConfig berisi kredensial EmailJS.
type EmailConfig struct {
	Service             string
	ServiceID           string
	TemplateID          string
	AutoReplyTemplateID string
	PublicKey           string
	PrivateKey          string
	AdminEmail          string
}

// Enabled bernilai true jika EMAIL_SERVICE=emailjs dan service id diisi.
func (e EmailConfig) Enabled() bool {
	return e.Service == "emailjs" && e.ServiceID != ""
}

// IsProduction bernilai true untuk APP_ENV=production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load memuat .env (jika ada) lalu membaca environment variable.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env tidak ditemukan, menggunakan environment default")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}

	bodyLimit, err := strconv.ParseInt(getEnv("BODY_LIMIT_MB", "500"), 10, 64)
	if err != nil || bodyLimit <= 0 {
		return nil, fmt.Errorf("invalid BODY_LIMIT_MB %q", os.Getenv("BODY_LIMIT_MB"))
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("APP_PORT", "5000"),
		MongoURI:    mongoURI,
		MongoDBName: getEnv("MONGO_DB_NAME", "ecolibres"),
		Postgres: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Email: EmailConfig{
			Service:             os.Getenv("EMAIL_SERVICE"),
			ServiceID:           os.Getenv("EMAILJS_SERVICE_ID"),
			TemplateID:          os.Getenv("EMAILJS_TEMPLATE_ID"),
			AutoReplyTemplateID: getEnv("EMAILJS_AUTOREPLY_TEMPLATE_ID", DefaultAutoReplyTemplateID),
			PublicKey:           os.Getenv("EMAILJS_PUBLIC_KEY"),
			PrivateKey:          os.Getenv("EMAILJS_PRIVATE_KEY"),
			AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		},
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		BodyLimitMB:    bodyLimit,
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		RequestTimeout: timeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
