package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Postgres struct {
	URL          string `json:"url"`
	Host         string `json:"host"`
	Port         uint16 `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	PasswordFile string `json:"password_file"`
	DBName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`
	Migrate      bool   `json:"migrate"`
}

func (p Postgres) password() (string, error) {
	if p.Password != "" || p.PasswordFile == "" {
		return p.Password, nil
	}
	data, err := os.ReadFile(p.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DbURL returns URL when set, otherwise builds one from the separate fields.
func (p Postgres) DbURL() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.User == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres url or host, user and db_name must be set")
	}
	password, err := p.password()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(p.User),
		url.QueryEscape(password),
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	), nil
}
