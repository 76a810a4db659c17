// Package auth owns the single local administrator record and the
// browser sessions in front of it.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/models"
	"github.com/smartsniper31/network-guardian/internal/store"
)

var (
	// ErrNoAccount means no credential record exists yet.
	ErrNoAccount = errors.New("no account exists")
	// ErrInvalidCredentials covers every email/password mismatch; it
	// deliberately does not say which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers expired, consumed and unknown reset tokens.
	ErrInvalidToken = errors.New("invalid or expired reset token")
)

const credentialKey = "user"

const recoveryTokenTTL = 15 * time.Minute

// DeviceResetter lets signup factory-reset the device collection
// without this package importing the registry.
type DeviceResetter interface {
	Reset()
}

// recoveryToken is a single-use, time-limited password reset grant.
type recoveryToken struct {
	email     string
	expiresAt time.Time
}

// Service is the session/credential store: exactly zero or one
// administrator record, kept under the "user" key of the persistent
// store with a salted bcrypt hash in place of the password.
type Service struct {
	store   *store.Store
	devices DeviceResetter
	bus     *events.Bus

	mu       sync.Mutex
	recovery map[string]recoveryToken
}

// NewService creates the credential store over the given key/value store.
func NewService(st *store.Store, devices DeviceResetter, bus *events.Bus) *Service {
	return &Service{
		store:    st,
		devices:  devices,
		bus:      bus,
		recovery: make(map[string]recoveryToken),
	}
}

// Signup creates the administrator account. It is a factory reset: any
// existing credential record is overwritten and the entire device
// collection is wiped, regardless of prior state. Calling it twice in
// a row still leaves exactly one credential record and zero devices.
func (s *Service) Signup(name, email, password string) (models.Credential, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.Credential{}, errors.New("name and email are required")
	}
	if len(password) < 6 {
		return models.Credential{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Credential{}, fmt.Errorf("hash password: %w", err)
	}

	cred := models.Credential{
		Name:         name,
		Email:        email,
		Role:         "Admin",
		PasswordHash: string(hash),
	}
	if err := s.save(cred); err != nil {
		return models.Credential{}, err
	}

	if s.devices != nil {
		s.devices.Reset()
	}
	s.invalidateRecovery()

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:     events.UserSignedUp,
			Severity: events.SeverityInfo,
			User:     name,
			Message:  fmt.Sprintf("account created for %s; device collection reset", email),
			Metadata: map[string]string{"action": "Sign Up", "target": email},
		})
	}

	log.Printf("✓ Account created: %s", email)
	return sanitize(cred), nil
}

// Login checks the email and password against the stored record.
// The bcrypt comparison is constant-time; the error never reveals
// which field was wrong.
func (s *Service) Login(email, password string) (models.Credential, error) {
	cred, err := s.load()
	if err != nil {
		return models.Credential{}, err
	}

	if cred.Email != strings.TrimSpace(email) {
		return models.Credential{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return models.Credential{}, ErrInvalidCredentials
	}
	return sanitize(cred), nil
}

// CurrentUser returns the credential record without secret material.
func (s *Service) CurrentUser() (models.Credential, bool) {
	cred, err := s.load()
	if err != nil {
		return models.Credential{}, false
	}
	return sanitize(cred), true
}

// StartRecovery issues a single-use reset token for the account. The
// stored secret is never echoed back; the token is the out-of-band
// artifact a real deployment would deliver by mail.
func (s *Service) StartRecovery(email string) (string, error) {
	cred, err := s.load()
	if err != nil {
		return "", err
	}
	if cred.Email != strings.TrimSpace(email) {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	s.mu.Lock()
	s.recovery[token] = recoveryToken{email: cred.Email, expiresAt: time.Now().Add(recoveryTokenTTL)}
	s.mu.Unlock()

	log.Printf("🔑 Password reset token issued for %s", cred.Email)
	return token, nil
}

// ResetPassword consumes a recovery token and installs a new password.
func (s *Service) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	s.mu.Lock()
	grant, ok := s.recovery[token]
	if ok {
		delete(s.recovery, token) // single-use, even on later failure
	}
	s.mu.Unlock()

	if !ok || time.Now().After(grant.expiresAt) {
		return ErrInvalidToken
	}

	cred, err := s.load()
	if err != nil {
		return err
	}
	if cred.Email != grant.email {
		// The account was recreated after the token was issued.
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	cred.PasswordHash = string(hash)
	if err := s.save(cred); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:     events.PasswordRecovered,
			Severity: events.SeverityWarning,
			User:     cred.Name,
			Message:  fmt.Sprintf("password reset completed for %s", cred.Email),
			Metadata: map[string]string{"action": "Reset Password", "target": cred.Email},
		})
	}
	return nil
}

func (s *Service) load() (models.Credential, error) {
	raw, ok := s.store.Read(credentialKey)
	if !ok {
		return models.Credential{}, ErrNoAccount
	}
	var cred models.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		log.Printf("⚠️  auth: unreadable credential record: %v", err)
		return models.Credential{}, ErrNoAccount
	}
	return cred, nil
}

func (s *Service) save(cred models.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	s.store.Write(credentialKey, raw)
	return nil
}

// invalidateRecovery drops all outstanding reset tokens.
func (s *Service) invalidateRecovery() {
	s.mu.Lock()
	s.recovery = make(map[string]recoveryToken)
	s.mu.Unlock()
}

func sanitize(cred models.Credential) models.Credential {
	cred.PasswordHash = ""
	return cred
}

// generateToken produces a 32-byte hex-encoded random string.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
