package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPath = "config.json"

	ModeDevelopment = "development"
	ModeProduction  = "production"
)

type Server struct {
	Addr            string   `json:"addr"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

type Session struct {
	IdleTimeout  Duration `json:"idle_timeout"`
	ReapInterval Duration `json:"reap_interval"`
	TickInterval Duration `json:"tick_interval"`
}

type JWT struct {
	Secret        string   `json:"secret"`
	TokenLifetime Duration `json:"token_lifetime"`
}

type Cookies struct {
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"same_site"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type Leaderboard struct {
	Backend    string   `json:"backend"`
	Dir        string   `json:"dir"`
	SQLitePath string   `json:"sqlite_path"`
	Postgres   Postgres `json:"postgres"`
	Redis      Redis    `json:"redis"`
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type Config struct {
	Mode        string      `json:"mode"`
	Server      Server      `json:"server"`
	Session     Session     `json:"session"`
	JWT         JWT         `json:"jwt"`
	Cookies     Cookies     `json:"cookies"`
	Leaderboard Leaderboard `json:"leaderboard"`
	Log         Log         `json:"log"`
}

func Default() Config {
	return Config{
		Mode: ModeProduction,
		Server: Server{
			Addr:            "localhost:8000",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Session: Session{
			IdleTimeout:  Duration{30 * time.Minute},
			ReapInterval: Duration{time.Minute},
			TickInterval: Duration{time.Second},
		},
		JWT: JWT{
			TokenLifetime: Duration{24 * time.Hour},
		},
		Cookies: Cookies{
			Secure:   true,
			SameSite: "strict",
		},
		Leaderboard: Leaderboard{
			Backend:    "file",
			SQLitePath: "leaderboard.db",
			Postgres: Postgres{
				Port:    5432,
				SSLMode: "disable",
				Migrate: true,
			},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads .env, then the JSON file at path, then environment overrides,
// each layer on top of [Default]. A missing file is only an error when path
// is not [DefaultPath].
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to read .env: %w", err)
	}

	config := Default()
	if err := ReadFile(path, &config); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || path != DefaultPath {
			return nil, err
		}
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func ReadFile(path string, config *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, config); err != nil {
		return fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Session.TickInterval.Duration <= 0 {
		return errors.New("session.tick_interval must be positive")
	}
	if c.Session.IdleTimeout.Duration <= 0 {
		return errors.New("session.idle_timeout must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c Config) Production() bool {
	return c.Mode == ModeProduction
}

func (c Config) Development() bool {
	return c.Mode != ModeProduction
}

func (c Config) CookieSameSite() http.SameSite {
	switch strings.ToUpper(c.Cookies.SameSite) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// Fields is the config as log fields, secrets left out.
func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":                  c.Mode,
		"addr":                  c.Server.Addr,
		"allowed_origins":       c.Server.AllowedOrigins,
		"session_idle_timeout":  c.Session.IdleTimeout.String(),
		"session_tick_interval": c.Session.TickInterval.String(),
		"jwt_token_lifetime":    c.JWT.TokenLifetime.String(),
		"jwt_secret_set":        c.JWT.Secret != "",
		"cookies_domain":        c.Cookies.Domain,
		"leaderboard_backend":   c.Leaderboard.Backend,
		"leaderboard_dir":       c.Leaderboard.Dir,
		"leaderboard_sqlite":    c.Leaderboard.SQLitePath,
		"pg_host":               c.Leaderboard.Postgres.Host,
		"pg_port":               c.Leaderboard.Postgres.Port,
		"pg_db_name":            c.Leaderboard.Postgres.DBName,
		"redis_addr":            c.Leaderboard.Redis.Addr,
		"log_level":             c.Log.Level,
		"log_file":              c.Log.File,
	}
}
