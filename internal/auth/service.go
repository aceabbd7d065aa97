package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cafe-agent/internal/domain"
	"cafe-agent/internal/repository"
)

var (
	// ErrUnavailable means no customer store is configured; account
	// operations are disabled but anonymous ordering still works.
	ErrUnavailable = errors.New("auth: account store not configured")
	// ErrInvalidCredentials covers unknown emails and wrong passwords
	// alike, so a caller cannot probe which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	// ErrMissingFields is returned when required signup/login fields are empty.
	ErrMissingFields = errors.New("auth: missing required fields")
)

// Identity is the resolved user behind a session token.
type Identity struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	LoggedInAt string `json:"logged_in_at"`
}

// Service manages customer accounts and in-process bearer-token sessions.
// Token sessions live for the process lifetime, like the engine's carts.
type Service struct {
	customers repository.CustomerStore

	mu       sync.RWMutex
	sessions map[string]Identity
}

// NewService creates a Service. A nil customer store disables signup and
// login but keeps token resolution working (always anonymous).
func NewService(customers repository.CustomerStore) *Service {
	return &Service{
		customers: customers,
		sessions:  make(map[string]Identity),
	}
}

// HashPassword returns the hex SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Signup registers a new customer account.
func (s *Service) Signup(ctx context.Context, name, email, phone, password string) (domain.Customer, error) {
	if s.customers == nil {
		return domain.Customer{}, ErrUnavailable
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return domain.Customer{}, ErrMissingFields
	}
	cust, err := s.customers.CreateCustomer(ctx, name, email, phone, HashPassword(password))
	if err != nil {
		return domain.Customer{}, err
	}
	return cust, nil
}

// Login verifies credentials and mints a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, Identity, error) {
	if s.customers == nil {
		return "", Identity{}, ErrUnavailable
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return "", Identity{}, ErrMissingFields
	}

	cust, err := s.customers.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return "", Identity{}, ErrInvalidCredentials
		}
		return "", Identity{}, err
	}
	if subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(cust.PasswordHash)) != 1 {
		return "", Identity{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", Identity{}, err
	}
	id := Identity{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		Email:      cust.Email,
		LoggedInAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.sessions[token] = id
	s.mu.Unlock()

	return token, id, nil
}

// Logout drops a session token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// FromToken resolves a session token to its identity.
func (s *Service) FromToken(token string) (Identity, bool) {
	if token == "" {
		return Identity{}, false
	}
	s.mu.RLock()
	id, ok := s.sessions[token]
	s.mu.RUnlock()
	return id, ok
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
