package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned when a required variable is not set.
var ErrMissingConfig = errors.New("missing required configuration")

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" || goEnv == "local" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV string `env:"GO_ENV" envDefault:"development"`
	PORT   int    `env:"PORT" envDefault:"8080"`

	// Database: a URL style variable wins over the discrete ones
	DATABASE_URL     string `env:"DATABASE_URL"`
	MYSQL_URL        string `env:"MYSQL_URL"`
	MYSQL_PUBLIC_URL string `env:"MYSQL_PUBLIC_URL"`
	DB_DRIVER        string `env:"DB_DRIVER" envDefault:"mysql"`
	DB_HOST          string `env:"DB_HOST"`
	DB_PORT          string `env:"DB_PORT"`
	DB_USER          string `env:"DB_USER"`
	DB_USER_NAME     string `env:"DB_USER_NAME"`
	DB_PASSWORD      string `env:"DB_PASSWORD"`
	DB_PASS          string `env:"DB_PASS"`
	DB_NAME          string `env:"DB_NAME"`
	DB_SSL_MODE      string `env:"DB_SSL_MODE"`

	// Pool
	DB_MAX_OPEN_CONNS    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DB_MAX_IDLE_CONNS    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DB_CONN_MAX_LIFETIME time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`

	// Bootstrap
	DB_CONNECT_RETRIES     int           `env:"DB_CONNECT_RETRIES" envDefault:"5"`
	DB_CONNECT_RETRY_DELAY time.Duration `env:"DB_CONNECT_RETRY_DELAY" envDefault:"2s"`
	SEED_SAMPLE_DATA       bool          `env:"SEED_SAMPLE_DATA" envDefault:"false"`

	// JWT Configuration
	JWT_SECRET         string        `env:"JWT_SECRET"`
	JWT_ISSUER         string        `env:"JWT_ISSUER" envDefault:"career-guidance-api"`
	JWT_EXPIRY         time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	JWT_REFRESH_EXPIRY time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// HTTP
	ALLOWED_ORIGINS     string `env:"ALLOWED_ORIGINS" envDefault:"*"`
	RATE_LIMIT_REQUESTS int    `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`

	// Redis Configuration
	REDIS_URL string `env:"REDIS_URL"`

	// Seed accounts, skipped when unset
	ADMIN_NAME              string `env:"ADMIN_NAME" envDefault:"Admin User"`
	ADMIN_EMAIL             string `env:"ADMIN_EMAIL"`
	ADMIN_PASSWORD          string `env:"ADMIN_PASSWORD"`
	SEED_INSTITUTE_EMAIL    string `env:"SEED_INSTITUTE_EMAIL"`
	SEED_INSTITUTE_PASSWORD string `env:"SEED_INSTITUTE_PASSWORD"`

	// Object storage (DigitalOcean Spaces or any S3 compatible endpoint)
	SPACES_ACCESS_KEY string `env:"SPACES_ACCESS_KEY"`
	SPACES_SECRET_KEY string `env:"SPACES_SECRET_KEY"`
	SPACES_BUCKET     string `env:"SPACES_BUCKET"`
	SPACES_REGION     string `env:"SPACES_REGION" envDefault:"nyc3"`
	SPACES_ENDPOINT   string `env:"SPACES_ENDPOINT"`

	// Cron
	CRON_ENABLED bool   `env:"CRON_ENABLED" envDefault:"true"`
	EXPORT_CRON  string `env:"EXPORT_CRON"`

	// Logging
	LOG_LEVEL  string `env:"LOG_LEVEL" envDefault:"info"`
	LOG_FORMAT string `env:"LOG_FORMAT" envDefault:"console"`
}

// DefaultPort is used when PORT is unset or empty.
const DefaultPort = 8080

func Get() (*EnvironmentVariable, error) {
	envVariables := &EnvironmentVariable{}
	if err := env.Parse(envVariables); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	envVariables.GO_ENV = strings.ToLower(strings.TrimSpace(envVariables.GO_ENV))
	envVariables.DB_DRIVER = strings.ToLower(strings.TrimSpace(envVariables.DB_DRIVER))
	// env skips envDefault for a variable that is set but empty
	if envVariables.PORT == 0 {
		envVariables.PORT = DefaultPort
	}
	if envVariables.DB_DRIVER == "" {
		envVariables.DB_DRIVER = DriverMySQL
	}

	return envVariables, nil
}

// IsProduction reports whether the process runs in a deployed environment.
// A production process keeps serving when the database is unreachable.
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// ValidateServer checks the variables the HTTP server cannot start without.
func (e *EnvironmentVariable) ValidateServer() error {
	var missing []string
	if strings.TrimSpace(e.JWT_SECRET) == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// AllowedOrigins splits ALLOWED_ORIGINS on commas.
func (e *EnvironmentVariable) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(e.ALLOWED_ORIGINS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// SpacesConfigured reports whether object storage credentials are present.
func (e *EnvironmentVariable) SpacesConfigured() bool {
	return e.SPACES_ACCESS_KEY != "" && e.SPACES_SECRET_KEY != "" && e.SPACES_BUCKET != ""
}
