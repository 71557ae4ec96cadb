package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DatabaseTarget is a fully resolved connection target.
type DatabaseTarget struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Source names the variable(s) the target was built from.
	Source string
}

// ResolveDatabase picks the connection target from the environment.
//
// Lookup order: DATABASE_URL, MYSQL_URL, MYSQL_PUBLIC_URL, then the discrete
// DB_* variables. Outside production a missing host or port falls back to the
// local default for the driver. User and database name are always required.
func ResolveDatabase(e *EnvironmentVariable) (*DatabaseTarget, error) {
	for _, candidate := range []struct{ name, value string }{
		{"DATABASE_URL", e.DATABASE_URL},
		{"MYSQL_URL", e.MYSQL_URL},
		{"MYSQL_PUBLIC_URL", e.MYSQL_PUBLIC_URL},
	} {
		if strings.TrimSpace(candidate.value) == "" {
			continue
		}
		target, err := parseDatabaseURL(candidate.value, e.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", candidate.name, err)
		}
		target.Source = candidate.name
		if e.DB_SSL_MODE != "" {
			target.SSLMode = e.DB_SSL_MODE
		}
		return target, nil
	}

	driver := e.DB_DRIVER
	if driver == "" {
		driver = DriverMySQL
	}
	if driver != DriverMySQL && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	target := &DatabaseTarget{
		Driver:   driver,
		Host:     e.DB_HOST,
		Port:     e.DB_PORT,
		User:     firstNonEmpty(e.DB_USER, e.DB_USER_NAME),
		Password: firstNonEmpty(e.DB_PASSWORD, e.DB_PASS),
		Name:     e.DB_NAME,
		SSLMode:  e.DB_SSL_MODE,
		Source:   "DB_*",
	}

	var missing []string
	if target.Host == "" {
		if e.IsProduction() {
			missing = append(missing, "DB_HOST")
		} else {
			target.Host = "localhost"
		}
	}
	if target.Port == "" {
		target.Port = defaultPort(driver)
	}
	if target.User == "" {
		missing = append(missing, "DB_USER")
	}
	if target.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if target.SSLMode == "" {
		target.SSLMode = "disable"
		if e.IsProduction() {
			target.SSLMode = "require"
		}
	}

	return target, nil
}

func parseDatabaseURL(raw string, production bool) (*DatabaseTarget, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	var driver string
	switch strings.ToLower(u.Scheme) {
	case "mysql", "mariadb":
		driver = DriverMySQL
	case "postgres", "postgresql":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	target := &DatabaseTarget{
		Driver: driver,
		Host:   u.Hostname(),
		Port:   u.Port(),
		Name:   strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		target.User = u.User.Username()
		target.Password, _ = u.User.Password()
	}
	if target.Port == "" {
		target.Port = defaultPort(driver)
	}
	target.SSLMode = u.Query().Get("sslmode")
	if target.SSLMode == "" {
		target.SSLMode = "disable"
		if production {
			target.SSLMode = "require"
		}
	}

	switch {
	case target.Host == "":
		return nil, fmt.Errorf("%w: host", ErrMissingConfig)
	case target.User == "":
		return nil, fmt.Errorf("%w: user", ErrMissingConfig)
	case target.Name == "":
		return nil, fmt.Errorf("%w: database name", ErrMissingConfig)
	}

	return target, nil
}

// MySQLConfig returns the go-sql-driver config for the target.
// With withDatabase false no schema is selected, which is what
// CREATE DATABASE needs.
func (t *DatabaseTarget) MySQLConfig(withDatabase bool) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = t.User
	cfg.Passwd = t.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(t.Host, t.Port)
	if withDatabase {
		cfg.DBName = t.Name
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = 10 * time.Second
	// UPDATE reports matched rows, so an unchanged row is not mistaken for a missing one
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if t.SSLMode != "" && t.SSLMode != "disable" {
		// managed MySQL hosts present certificates the pool cannot verify
		cfg.TLSConfig = "skip-verify"
	}
	return cfg
}

// DSN returns the driver specific connection string.
func (t *DatabaseTarget) DSN() string {
	if t.Driver == DriverPostgres {
		return t.postgresDSN(t.Name)
	}
	return t.MySQLConfig(true).FormatDSN()
}

// ServerDSN connects to the server without the application database.
func (t *DatabaseTarget) ServerDSN() string {
	if t.Driver == DriverPostgres {
		return t.postgresDSN("postgres")
	}
	return t.MySQLConfig(false).FormatDSN()
}

func (t *DatabaseTarget) postgresDSN(dbname string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		pgValue(t.Host), pgValue(t.User), pgValue(t.Password), pgValue(dbname), pgValue(t.Port), pgValue(t.SSLMode),
	)
}

// Redacted renders the target for logs without the password.
func (t *DatabaseTarget) Redacted() string {
	return fmt.Sprintf("%s://%s:***@%s/%s", t.Driver, t.User, net.JoinHostPort(t.Host, t.Port), t.Name)
}

func pgValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
