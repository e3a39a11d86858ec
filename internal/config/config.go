package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting of the spelling-bee binaries. Values come from
// defaults, then .env files, then the environment, then flags.
type Config struct {
	Addr string

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	SweepInterval time.Duration

	AdminPasswordHash string
	ImportPolicy      string
	Words             []string

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Addr:          ":8080",
		DBDriver:      DriverSQLite,
		DBPath:        "spellbee.db",
		SessionTTL:    12 * time.Hour,
		SweepInterval: 10 * time.Minute,
		ImportPolicy:  "skip",
		LogLevel:      "info",
		LogFormat:     "color",
	}
}

// FromEnv loads the given .env files (".env" when none are named; missing
// files are ignored) and overlays SPELLBEE_* variables on the defaults.
func FromEnv(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Default()
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.Addr, "SPELLBEE_ADDR")
	setString(&cfg.DBDriver, "SPELLBEE_DB_DRIVER")
	setString(&cfg.DBPath, "SPELLBEE_DB_PATH")
	setString(&cfg.DatabaseURL, "SPELLBEE_DATABASE_URL")
	setString(&cfg.SessionSecret, "SPELLBEE_SESSION_SECRET")
	setString(&cfg.AdminPasswordHash, "SPELLBEE_ADMIN_PASSWORD_HASH")
	setString(&cfg.ImportPolicy, "SPELLBEE_IMPORT_POLICY")
	setString(&cfg.LogLevel, "SPELLBEE_LOG_LEVEL")
	setString(&cfg.LogFormat, "SPELLBEE_LOG_FORMAT")

	if err := setDuration(&cfg.SessionTTL, "SPELLBEE_SESSION_TTL"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.SweepInterval, "SPELLBEE_SWEEP_INTERVAL"); err != nil {
		return Config{}, err
	}

	if raw := strings.TrimSpace(os.Getenv("SPELLBEE_WORDS")); raw != "" {
		cfg.Words = splitList(raw)
	}

	return cfg, nil
}

// BindFlags registers flags whose defaults are the current values of c, so
// flags override whatever the environment provided.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.DBDriver, "db-driver", c.DBDriver, "database driver: sqlite or postgres")
	fs.StringVar(&c.DBPath, "db-path", c.DBPath, "SQLite database file")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "PostgreSQL connection string")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "idle time after which a quiz session is discarded (0 keeps sessions forever)")
	fs.DurationVar(&c.SweepInterval, "sweep-interval", c.SweepInterval, "how often expired sessions are removed")
	fs.StringVar(&c.ImportPolicy, "import-policy", c.ImportPolicy, "CSV import policy: skip or strict")
	fs.StringSliceVar(&c.Words, "words", c.Words, "comma separated spelling word list")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: color, text, json")
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("database url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}

	if c.SessionTTL < 0 {
		return errors.New("session ttl must not be negative")
	}
	switch strings.ToLower(c.ImportPolicy) {
	case "", "skip", "strict":
	default:
		return fmt.Errorf("unknown import policy %q", c.ImportPolicy)
	}
	return nil
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
