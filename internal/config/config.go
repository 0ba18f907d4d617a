package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = "off"
	defaultJWTIssuer   = "leadline"
	defaultJWTTTL      = 24 * time.Hour
	defaultJWTLeeway   = 30 * time.Second

	envProduction = "production"
)

type Config struct {
	Env         string
	DatabaseURL string
	HTTPAddr    string
	MetricsAddr string

	AuthCookieSecure bool

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
	JWTLeeway time.Duration

	VaultAddr           string
	VaultToken          string
	VaultNamespace      string
	VaultJWTSecretPath  string
	VaultJWTSecretField string
}

func (c Config) IsProduction() bool {
	return c.Env == envProduction
}

// VaultConfigured reports whether the Vault secret source should be
// used instead of the JWT_SECRET environment variable.
func (c Config) VaultConfigured() bool {
	return c.VaultAddr != "" && c.VaultJWTSecretPath != ""
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		Env:         strings.ToLower(strings.TrimSpace(getenvDefault("APP_ENV", "development"))),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr: getenvDefault("METRICS_ADDR", defaultMetricsAddr),

		AuthCookieSecure: getenvBoolDefault("AUTH_COOKIE_SECURE", false),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getenvDefault("JWT_ISSUER", defaultJWTIssuer),
		JWTTTL:    getenvDurationDefault("JWT_TTL", defaultJWTTTL),
		JWTLeeway: getenvDurationDefault("JWT_LEEWAY", defaultJWTLeeway),

		VaultAddr:           strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultToken:          strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultNamespace:      strings.TrimSpace(os.Getenv("VAULT_NAMESPACE")),
		VaultJWTSecretPath:  strings.TrimSpace(os.Getenv("VAULT_JWT_SECRET_PATH")),
		VaultJWTSecretField: strings.TrimSpace(os.Getenv("VAULT_JWT_SECRET_FIELD")),
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
