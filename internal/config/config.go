package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Audit    AuditConfig
}

type DatabaseConfig struct {
	Driver            string
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	SQLitePath        string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port                    string
	Env                     string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	TrustedProxies          []string
	LoginRateLimitPerMinute int
}

// AuthConfig carries the login guard policy. The guard values are process-wide
// and read once at startup.
type AuthConfig struct {
	MaxFailedAttempts   int
	LockoutDuration     time.Duration
	MinAttemptInterval  time.Duration
	DiscloseLockState   bool
	JWTSecret           string
	AccessTokenExpiry   time.Duration
	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

type AuditConfig struct {
	Async           bool
	Retention       time.Duration
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:            strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "credguard"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			SQLitePath:        getEnv("SQLITE_PATH", "credguard.db"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:                    getEnv("PORT", "8080"),
			Env:                     env,
			ReadTimeout:             getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:            getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:             getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			TrustedProxies:          getEnvAsList("TRUSTED_PROXIES"),
			LoginRateLimitPerMinute: getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 20),
		},
		Auth: AuthConfig{
			MaxFailedAttempts:   getEnvAsInt("MAX_FAILED_LOGIN_ATTEMPTS", 5),
			LockoutDuration:     getEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),
			MinAttemptInterval:  getEnvAsDuration("MIN_LOGIN_ATTEMPT_INTERVAL", 2*time.Second),
			DiscloseLockState:   getEnvAsBool("DISCLOSE_LOCK_STATE", false),
			JWTSecret:           jwtSecret,
			AccessTokenExpiry:   getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 500),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
		},
		Audit: AuditConfig{
			Async:           getEnvAsBool("AUDIT_ASYNC", false),
			Retention:       getEnvAsDuration("LOGIN_EVENT_RETENTION", 0),
			CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
		},
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if cfg.Database.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if err := validateGuardPolicy(&cfg.Auth); err != nil {
		return nil, err
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateGuardPolicy rejects values that would disable the lockout or throttle.
func validateGuardPolicy(a *AuthConfig) error {
	if a.MaxFailedAttempts < 1 {
		return fmt.Errorf("MAX_FAILED_LOGIN_ATTEMPTS must be at least 1 (got %d)", a.MaxFailedAttempts)
	}
	if a.LockoutDuration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive (got %s)", a.LockoutDuration)
	}
	if a.MinAttemptInterval < 0 {
		return fmt.Errorf("MIN_LOGIN_ATTEMPT_INTERVAL cannot be negative (got %s)", a.MinAttemptInterval)
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
