package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// DemoMode runs the service on the in-memory store when no database is
	// configured. Mutations still work but nothing survives a restart.
	DemoMode bool

	// AdminPasswordHash is the bcrypt hash of the shared operator password.
	AdminPasswordHash string
	SessionSecret     string

	// PublicBaseURL is the origin serving the SPA; check-in deep links and
	// QR codes are built against it.
	PublicBaseURL string

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
	// ContactInbox receives contact-form notifications.
	ContactInbox string
}

// Load reads configuration from the environment, optionally seeded from a
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DemoMode:          os.Getenv("DEMO_MODE") == "1",
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		ContactInbox:      os.Getenv("CONTACT_INBOX"),
	}

	if cfg.DatabaseURL == "" && !cfg.DemoMode {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set (set DEMO_MODE=1 to run on the in-memory store)")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is not set")
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:5173"
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if smtpPort := os.Getenv("SMTP_PORT"); smtpPort != "" {
		p, err := strconv.Atoi(smtpPort)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT environment variable: %w", err)
		}
		cfg.SMTPPort = p
	} else {
		cfg.SMTPPort = 587
	}

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		cfg.CORSAllowedOrigins = []string{"*"}
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}
