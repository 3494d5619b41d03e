package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"time"

	"qcm-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminPassword is only honored with PasswordPolicy.AllowDefault and no configured secret.
const DefaultAdminPassword = "admin"

// PasswordPolicy describes how the admin password is checked.
// Hash, when set, is a bcrypt hash and takes precedence over Secret.
type PasswordPolicy struct {
	Secret       string
	Hash         string
	AllowDefault bool
}

// Configured reports whether the policy can unlock a session at all.
func (p PasswordPolicy) Configured() bool {
	return p.Hash != "" || p.Secret != "" || p.AllowDefault
}

func (p PasswordPolicy) check(password string) error {
	switch {
	case p.Hash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(password)); err != nil {
			return domain.ErrInvalidPassword
		}
		return nil
	case p.Secret != "":
		return constantTimeMatch(p.Secret, password)
	case p.AllowDefault:
		return constantTimeMatch(DefaultAdminPassword, password)
	default:
		return domain.ErrAdminSecretMissing
	}
}

func constantTimeMatch(want, got string) error {
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return domain.ErrInvalidPassword
	}
	return nil
}

// AdminGate keeps the Locked/Unlocked state of each admin session.
type AdminGate struct {
	sessions SessionRepository
	policy   PasswordPolicy
	now      func() time.Time
}

func NewAdminGate(sessions SessionRepository, policy PasswordPolicy) *AdminGate {
	return &AdminGate{sessions: sessions, policy: policy, now: time.Now}
}

// Open starts a new locked session.
func (g *AdminGate) Open(ctx context.Context) (domain.AdminSession, error) {
	session := domain.AdminSession{
		ID:        uuid.NewString(),
		State:     domain.Locked,
		CreatedAt: g.now(),
	}
	if err := g.sessions.Save(ctx, session); err != nil {
		return domain.AdminSession{}, err
	}
	return session, nil
}

// Login checks password and, on success, stores a fresh Unlocked session
// under a new id, replacing id when given. A failed attempt stores nothing.
func (g *AdminGate) Login(ctx context.Context, id, password string) (domain.AdminSession, error) {
	if err := g.policy.check(password); err != nil {
		return domain.AdminSession{}, err
	}
	session := domain.AdminSession{
		ID:        uuid.NewString(),
		State:     domain.Unlocked,
		CreatedAt: g.now(),
	}
	if err := g.sessions.Save(ctx, session); err != nil {
		return domain.AdminSession{}, err
	}
	if id != "" {
		if err := g.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("drop previous admin session failed: %v", err)
		}
	}
	return session, nil
}

// Logout drops the session, which locks it.
func (g *AdminGate) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := g.sessions.Delete(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

// Authorize returns ErrLocked unless id names an unlocked session.
func (g *AdminGate) Authorize(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrLocked
	}
	session, err := g.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.ErrLocked
	}
	if err != nil {
		return err
	}
	if !session.IsUnlocked() {
		return domain.ErrLocked
	}
	return nil
}
