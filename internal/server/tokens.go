package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenCookie = "token"

var ErrNoToken = errors.New("no session token")

// Tokens issues and checks the HS256 tokens that bind a client to a session.
// The token subject is the session id.
type Tokens struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	lifetime      time.Duration
}

func NewTokens(secret []byte, lifetime time.Duration) *Tokens {
	return &Tokens{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		lifetime:      lifetime,
	}
}

// RandomSecret is used in development when no secret is configured.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (t *Tokens) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.secret)
}

// Parse validates token and returns the session id it was issued for.
func (t *Tokens) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// FromRequest reads the token from the Authorization header, the token
// cookie or, for WebSocket handshakes, the token query parameter.
func FromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return "", fmt.Errorf("unsupported authorization scheme")
		}
		return strings.TrimSpace(token), nil
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value, nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}

type cookieSettings struct {
	domain   string
	secure   bool
	sameSite http.SameSite
}

func (t *Tokens) setCookie(w http.ResponseWriter, c cookieSettings, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Path:     "/",
		Value:    token,
		Expires:  time.Now().Add(t.lifetime),
		HttpOnly: true,
		Domain:   c.domain,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func clearCookie(w http.ResponseWriter, c cookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Path:     "/",
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.domain,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
