package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"portfolio/config"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const subject = "admin"

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
)

// Claims represents JWT claims
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// JWTManager issues and checks admin session tokens
type JWTManager struct {
	password   []byte
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager. An empty password disables login.
func NewJWTManager(password, secret string, expiration time.Duration) *JWTManager {
	return &JWTManager{
		password:   []byte(password),
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// FromConfig builds the manager for the admin section. Without a configured
// secret a random one is used and sessions end when the process restarts.
func FromConfig(cfg config.TomlAdmin) (*JWTManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn("No JWT secret configured, using a random one")
	}
	if cfg.Password == "" {
		log.Warn("No admin password configured, admin login is disabled")
	}
	return NewJWTManager(cfg.Password, secret, cfg.SessionTTL.Duration), nil
}

func (m *JWTManager) Expiration() time.Duration {
	return m.expiration
}

// CheckPassword compares in constant time
func (m *JWTManager) CheckPassword(password string) error {
	if len(m.password) == 0 || subtle.ConstantTimeCompare(m.password, []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// Login checks the password and returns a fresh token
func (m *JWTManager) Login(password string) (string, time.Time, error) {
	if err := m.CheckPassword(password); err != nil {
		return "", time.Time{}, err
	}
	return m.GenerateToken()
}

// GenerateToken generates a new JWT token and returns its expiry
func (m *JWTManager) GenerateToken() (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.expiration)
	claims := &Claims{
		Sub: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateToken validates a JWT token and returns the claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Sub == subject {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Extend validates a token and issues a new one with a full lifetime
func (m *JWTManager) Extend(tokenString string) (string, time.Time, error) {
	if _, err := m.ValidateToken(tokenString); err != nil {
		return "", time.Time{}, err
	}
	return m.GenerateToken()
}
