package app

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/oidcx"
)

type Config struct {
	Issuer  string // Required: issuer claim for tokens
	NumKeys int    // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	Pepper       string // Optional: pepper mixed into password hashes

	// FieldCipherKey encrypts the subject claim inside tokens. Base64url,
	// decoding to 16, 24, or 32 bytes. Required so tokens stay readable
	// across restarts and replicas.
	FieldCipherKey string

	RedisAddr     string // Redis address for the revocation store (default: localhost:6379)
	RedisPassword string // Optional
	RedisDB       int    // Optional (default: 0)

	// Providers for federated login, parsed from OAUTH2_PROVIDERS plus
	// per-provider env vars.
	Providers []oidcx.Config

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "tablechat-auth"),
		NumKeys:             getEnvIntOrDefault("AUTH_NUM_KEYS", 0), // 0 lets the key manager default
		AccessTTL:           getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:          getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Pepper:              os.Getenv("AUTH_PEPPER"),
		FieldCipherKey:      os.Getenv("AUTH_FIELD_CIPHER_KEY"),
		RedisAddr:           getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvIntOrDefault("REDIS_DB", 0),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	cfg.Providers = loadProviderConfigs()

	return cfg
}

// DecodeFieldCipherKey decodes the configured field cipher key.
func (c Config) DecodeFieldCipherKey() ([]byte, error) {
	if c.FieldCipherKey == "" {
		return nil, fmt.Errorf("AUTH_FIELD_CIPHER_KEY is required")
	}
	key, err := base64.RawURLEncoding.DecodeString(c.FieldCipherKey)
	if err != nil {
		return nil, fmt.Errorf("AUTH_FIELD_CIPHER_KEY is not valid base64url: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("AUTH_FIELD_CIPHER_KEY must decode to 16, 24, or 32 bytes, got %d", len(key))
	}
}

// loadProviderConfigs reads federated login providers from the environment.
// OAUTH2_PROVIDERS is a comma-separated name list; each name then has
// OAUTH2_{NAME}_ISSUER_URL, OAUTH2_{NAME}_CLIENT_ID,
// OAUTH2_{NAME}_CLIENT_SECRET, and OAUTH2_{NAME}_REDIRECT_URL.
func loadProviderConfigs() []oidcx.Config {
	names := os.Getenv("OAUTH2_PROVIDERS")
	if names == "" {
		return nil
	}

	var configs []oidcx.Config
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		prefix := "OAUTH2_" + strings.ToUpper(name) + "_"

		configs = append(configs, oidcx.Config{
			Name:         name,
			IssuerURL:    os.Getenv(prefix + "ISSUER_URL"),
			ClientID:     os.Getenv(prefix + "CLIENT_ID"),
			ClientSecret: os.Getenv(prefix + "CLIENT_SECRET"),
			RedirectURL:  os.Getenv(prefix + "REDIRECT_URL"),
			Scopes:       []string{"openid", "profile", "email"},
		})
	}
	return configs
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration strings ("15m", "168h") or integer minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
