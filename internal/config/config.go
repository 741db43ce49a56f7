package config

import (
	"os"
)

// Config holds all runtime configuration. It is loaded once at startup and
// never mutated afterwards; the signing secret and admin token are passed by
// value into the components that need them.
type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWTSecret signs all access and refresh tokens. Rotating it invalidates
	// every outstanding token; that is the only revocation mechanism.
	JWTSecret string

	// AdminSecretToken is the legacy static admin credential accepted in the
	// admin-token header. Kept for back-compat with pre-JWT clients.
	AdminSecretToken string

	Env string
}

// Load reads configuration from environment variables with development
// fallbacks. Release mode refuses to run on the default JWT secret.
func Load() Config {
	cfg := Config{
		Port:             getenv("PORT", "8080"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPassword:       getenv("DB_PASSWORD", "postgres"),
		DBName:           getenv("DB_NAME", "postgres"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        getenv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		AdminSecretToken: getenv("ADMIN_SECRET_TOKEN", "admin-secret-token"),
		Env:              getenv("GIN_MODE", "debug"),
	}

	if cfg.Env == "release" && os.Getenv("JWT_SECRET") == "" {
		panic("FATAL: JWT_SECRET environment variable is required in production mode")
	}

	return cfg
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// Development reports whether the process runs in development mode; error
// responses include extra detail only then.
func (c Config) Development() bool {
	return c.Env != "release"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
