// Package auth implements the shared admin password login, signed admin
// sessions and the shared secret used by unattended triggers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrNotConfigured      = errors.New("admin password not configured")
)

// AdminSubject is the subject of every admin session token
const AdminSubject = "admin"

// Session represents an authenticated admin session
type Session struct {
	Token     string
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	AdminPassword string
	// SessionSecret signs session tokens. A random secret is generated when empty,
	// so sessions do not survive a restart.
	SessionSecret   string
	CronSecret      string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Service handles admin login and session validation
type Service struct {
	clock clock.Clock

	passwordHash []byte
	secret       []byte
	cronSecret   []byte

	mu      sync.RWMutex
	revoked map[string]time.Time

	sessionDuration time.Duration
}

// New creates a new auth Service, hashing the admin password
func New(clk clock.Clock, cfg Config) (*Service, error) {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}

	s := &Service{
		clock:           clk,
		cronSecret:      []byte(cfg.CronSecret),
		revoked:         make(map[string]time.Time),
		sessionDuration: cfg.SessionDuration,
	}

	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		s.passwordHash = hash
	}

	if cfg.SessionSecret != "" {
		s.secret = []byte(cfg.SessionSecret)
	} else {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	return s, nil
}

// Login checks the admin password and issues a session
func (s *Service) Login(password string) (*Session, error) {
	if s.passwordHash == nil {
		return nil, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.createSession()
}

// ValidateSession checks a session token's signature, expiry and revocation
func (s *Service) ValidateSession(token string) (*Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		return nil, ErrInvalidSession
	}

	if claims.Subject != AdminSubject || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrInvalidSession
	}

	// Expiry is checked against the injected clock
	if !s.clock.Now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	_, revoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if revoked {
		return nil, ErrInvalidSession
	}

	return &Session{
		Token:     token,
		ID:        claims.ID,
		CreatedAt: claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// InvalidateSession revokes a session until it would have expired
func (s *Service) InvalidateSession(token string) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.revoked[session.ID] = session.ExpiresAt
	s.mu.Unlock()
}

// CheckTriggerSecret reports whether token matches the configured trigger
// secret. An unset secret never matches.
func (s *Service) CheckTriggerSecret(token string) bool {
	if len(s.cronSecret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), s.cronSecret) == 1
}

// createSession signs a new admin session token
func (s *Service) createSession() (*Session, error) {
	now := s.clock.Now()
	id := uuid.NewString()
	expires := now.Add(s.sessionDuration)

	claims := jwt.RegisteredClaims{
		Subject:   AdminSubject,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return &Session{
		Token:     token,
		ID:        id,
		CreatedAt: now,
		ExpiresAt: expires,
	}, nil
}

// CleanExpiredSessions forgets revocations of sessions that have expired (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, expires := range s.revoked {
		if !now.Before(expires) {
			delete(s.revoked, id)
		}
	}
}
