// Package session implements the Session Store (C8): the lifecycle state
// machine for AssumeRole sessions, backed by repository.SessionRepository.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// State is the derived lifecycle state of a Session: it is never stored
// directly, only computed from IsActive and ExpiresAt.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
	StateRevoked State = "revoked"
)

// DefaultSessionDuration is used when a caller requests no duration.
const DefaultSessionDuration = time.Hour

// BeginParams carries the inputs to Begin.
type BeginParams struct {
	AccountID          string
	RoleID             string
	UserID             string
	SessionName        string
	ExternalID         string
	SourceIP           string
	UserAgent          string
	RequestedDuration  time.Duration
	MaxSessionDuration time.Duration
}

// Manager owns the Session lifecycle: creation, token-hash finalization,
// refresh/extension, and revocation.
type Manager struct {
	repo repository.SessionRepository
}

// NewManager builds a Manager over the given SessionRepository.
func NewManager(repo repository.SessionRepository) *Manager {
	return &Manager{repo: repo}
}

// Begin creates a new session row for an AssumeRole call. The effective
// duration is min(requestedDuration, maxSessionDuration), defaulting to
// DefaultSessionDuration when no duration is requested. The session is
// created with a placeholder token hash — callers must issue the
// credential and call Finalize with its real hash before the session is
// usable for lookups.
func (m *Manager) Begin(ctx context.Context, p BeginParams) (*models.Session, error) {
	duration := p.RequestedDuration
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	if p.MaxSessionDuration > 0 && duration > p.MaxSessionDuration {
		duration = p.MaxSessionDuration
	}

	now := time.Now()
	sess := &models.Session{
		ID:               bunx.NewUUIDv7(),
		AccountID:        p.AccountID,
		RoleID:           p.RoleID,
		UserID:           p.UserID,
		SessionName:      p.SessionName,
		ExternalID:       p.ExternalID,
		SourceIP:         p.SourceIP,
		UserAgent:        p.UserAgent,
		AssumedAt:        now,
		ExpiresAt:        now.Add(duration),
		SessionTokenHash: bunx.NewUUIDv7(),
		IsActive:         true,
	}
	if err := m.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// Finalize replaces a session's placeholder token hash with the real
// SHA-256 hash of the credential issued for it.
func (m *Manager) Finalize(ctx context.Context, sessionID, tokenHash string) error {
	sess, err := m.repo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.SessionTokenHash = tokenHash
	if err := m.repo.Update(ctx, sess); err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	return nil
}

// StateOf derives the lifecycle state of a session from its stored fields.
func StateOf(sess *models.Session) State {
	if !sess.IsActive {
		return StateRevoked
	}
	if time.Now().After(sess.ExpiresAt) {
		return StateExpired
	}
	return StateActive
}

// RefreshExtend extends an active session's expiry, capped at
// assumedAt + maxSessionDuration — a session can never outlive the role's
// maximum session duration, however many times it is refreshed.
func (m *Manager) RefreshExtend(ctx context.Context, sessionID string, extension, maxSessionDuration time.Duration) error {
	sess, err := m.repo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if StateOf(sess) != StateActive {
		return apierr.Conflictf("session %s is not active", sessionID)
	}

	newExpiry := time.Now().Add(extension)
	ceiling := sess.AssumedAt.Add(maxSessionDuration)
	if newExpiry.After(ceiling) {
		newExpiry = ceiling
	}
	sess.ExpiresAt = newExpiry
	if err := m.repo.Update(ctx, sess); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

// Revoke terminates a session immediately, regardless of its expiry.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if err := m.repo.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// GetByTokenHash looks up the session bound to a given credential hash.
func (m *Manager) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	return m.repo.GetByTokenHash(ctx, tokenHash)
}

// ListActiveByUser lists a user's currently-active sessions (not yet
// expired or revoked in storage — callers should still check StateOf for
// time-based expiry since expiry is derived, not swept).
func (m *Manager) ListActiveByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return m.repo.ListActiveByUser(ctx, userID)
}
