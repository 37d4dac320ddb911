package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func lookupBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v != "0" && !strings.EqualFold(v, "false")
	}
}

func lookupDuration(key string, dst *Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	dst.Duration = d
	return nil
}

// applyEnv overrides config values with MINES_* variables and the
// conventional DATABASE_URL, POSTGRES_*, REDIS_* ones.
func (c *Config) applyEnv() error {
	lookupString("MINES_MODE", &c.Mode)
	if _, ok := os.LookupEnv("DEVELOPMENT"); ok {
		dev := false
		lookupBool("DEVELOPMENT", &dev)
		if dev {
			c.Mode = ModeDevelopment
		}
	}

	lookupString("MINES_ADDR", &c.Server.Addr)
	if v, ok := os.LookupEnv("MINES_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = strings.Split(v, ",")
		for i := range c.Server.AllowedOrigins {
			c.Server.AllowedOrigins[i] = strings.TrimSpace(c.Server.AllowedOrigins[i])
		}
	}

	lookupString("MINES_JWT_SECRET", &c.JWT.Secret)
	lookupString("MINES_COOKIES_DOMAIN", &c.Cookies.Domain)
	lookupBool("MINES_COOKIES_SECURE", &c.Cookies.Secure)
	lookupString("MINES_COOKIES_SAMESITE", &c.Cookies.SameSite)

	lookupString("MINES_LEADERBOARD_BACKEND", &c.Leaderboard.Backend)
	lookupString("MINES_LEADERBOARD_DIR", &c.Leaderboard.Dir)
	lookupString("MINES_SQLITE_PATH", &c.Leaderboard.SQLitePath)

	pg := &c.Leaderboard.Postgres
	lookupString("DATABASE_URL", &pg.URL)
	lookupString("POSTGRES_HOST", &pg.Host)
	lookupString("POSTGRES_USER", &pg.User)
	lookupString("POSTGRES_PASSWORD", &pg.Password)
	lookupString("POSTGRES_PASSWORD_FILE", &pg.PasswordFile)
	lookupString("POSTGRES_DB", &pg.DBName)
	lookupString("POSTGRES_SSLMODE", &pg.SSLMode)
	if v, ok := os.LookupEnv("POSTGRES_PORT"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("POSTGRES_PORT: %w", err)
		}
		pg.Port = uint16(port)
	}

	lookupString("REDIS_ADDR", &c.Leaderboard.Redis.Addr)
	lookupString("REDIS_PASSWORD", &c.Leaderboard.Redis.Password)

	lookupString("MINES_LOG_LEVEL", &c.Log.Level)
	lookupString("MINES_LOG_FILE", &c.Log.File)

	for key, dst := range map[string]*Duration{
		"MINES_SESSION_IDLE_TIMEOUT": &c.Session.IdleTimeout,
		"MINES_TICK_INTERVAL":        &c.Session.TickInterval,
		"MINES_JWT_TOKEN_LIFETIME":   &c.JWT.TokenLifetime,
	} {
		if err := lookupDuration(key, dst); err != nil {
			return err
		}
	}
	return lookupInt("REDIS_DB", &c.Leaderboard.Redis.DB)
}
