// Package service orchestrates the repositories and C1-C10 subsystems into
// the operations iamd's HTTP surface exposes: account/user/group/policy/role
// management and the STS login/AssumeRole/refresh/logout lifecycle.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/condition"
	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/policydoc"
	"github.com/terraconstructs/iamcore/internal/repository"
	"github.com/terraconstructs/iamcore/internal/revocation"
	"github.com/terraconstructs/iamcore/internal/session"
	"github.com/terraconstructs/iamcore/internal/trust"
)

// Credential is the (access, refresh) token pair STSService hands back.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// STSService implements the Role Assumption & Session Management module
// (C6-C8): login, AssumeRole, refresh, and revocation, wired over the
// Trust Evaluator, Credential Issuer, Session Store, and Revocation Store.
type STSService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	issuer   *credentials.Issuer
	sessions *session.Manager
	rev      *revocation.Store
}

// NewSTSService builds an STSService from its collaborators.
func NewSTSService(users repository.UserRepository, roles repository.RoleRepository, issuer *credentials.Issuer, sessions *session.Manager, rev *revocation.Store) *STSService {
	return &STSService{users: users, roles: roles, issuer: issuer, sessions: sessions, rev: rev}
}

// Login authenticates a username/password pair and mints a credential pair
// for the User directly, with no role assumed. Disabled users are rejected
// regardless of password match.
func (s *STSService) Login(ctx context.Context, accountID, username, password string) (Credential, error) {
	user, err := s.users.GetByUsername(ctx, accountID, username)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return Credential{}, apierr.Authenticationf("invalid username or password")
		}
		return Credential{}, fmt.Errorf("login: %w", err)
	}
	if user.Status != models.UserActive {
		return Credential{}, apierr.Authenticationf("user is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Credential{}, apierr.Authenticationf("invalid username or password")
	}

	return s.issue(user.ID, user.AccountID, user.Username, user.IsRoot, "", "")
}

// AssumeRoleParams carries the inputs to AssumeRole.
type AssumeRoleParams struct {
	PrincipalUserID string
	RoleID          string
	SessionName     string
	ExternalID      string
	Duration        time.Duration
	SourceIP        string
	UserAgent       string
}

// AssumeRole evaluates the target role's trust document against the calling
// principal (C6) and, if admitted, opens a Session (C8) and mints a
// credential pair scoped to that session and role.
func (s *STSService) AssumeRole(ctx context.Context, p AssumeRoleParams) (Credential, error) {
	user, err := s.users.GetByID(ctx, p.PrincipalUserID)
	if err != nil {
		return Credential{}, fmt.Errorf("assume role: %w", err)
	}
	if user.Status != models.UserActive {
		return Credential{}, apierr.Authenticationf("user is disabled")
	}
	role, err := s.roles.GetByID(ctx, p.RoleID)
	if err != nil {
		return Credential{}, fmt.Errorf("assume role: %w", err)
	}

	doc, err := policydoc.Parse(role.AssumeRolePolicyDocument)
	if err != nil {
		return Credential{}, apierr.Internalf(err, "role %s carries an invalid trust document", role.ID)
	}

	evalCtx := condition.Context{"sts:ExternalId": p.ExternalID}
	principal := trust.Principal{Type: "AWS", Value: fmt.Sprintf("arn:aws:iam::%s:user/%s", role.AccountID, user.ID)}
	result := trust.Evaluate(doc, principal, evalCtx)
	if !result.Admitted {
		return Credential{}, apierr.Authenticationf("not admitted to assume role %s: %s", role.ID, result.Reason)
	}

	sess, err := s.sessions.Begin(ctx, session.BeginParams{
		AccountID:          role.AccountID,
		RoleID:             role.ID,
		UserID:             user.ID,
		SessionName:        p.SessionName,
		ExternalID:         p.ExternalID,
		SourceIP:           p.SourceIP,
		UserAgent:          p.UserAgent,
		RequestedDuration:  p.Duration,
		MaxSessionDuration: time.Duration(role.MaxSessionDuration) * time.Second,
	})
	if err != nil {
		return Credential{}, fmt.Errorf("assume role: %w", err)
	}

	cred, err := s.issue(user.ID, role.AccountID, user.Username, false, sess.ID, role.ID)
	if err != nil {
		return Credential{}, err
	}
	if err := s.sessions.Finalize(ctx, sess.ID, credentials.HashToken(cred.RefreshToken)); err != nil {
		return Credential{}, fmt.Errorf("assume role: %w", err)
	}
	return cred, nil
}

// Refresh validates a refresh token against the Revocation Store and, for
// session-bound credentials, against the Session Store's lifecycle state,
// then mints a fresh credential pair and revokes the consumed refresh
// token so it cannot be replayed.
func (s *STSService) Refresh(ctx context.Context, refreshToken string) (Credential, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return Credential{}, err
	}
	refreshHash := credentials.HashToken(refreshToken)

	revoked, err := s.rev.IsRevoked(ctx, refreshHash, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		return Credential{}, fmt.Errorf("refresh: %w", err)
	}
	if revoked {
		return Credential{}, apierr.Authenticationf("refresh token revoked")
	}

	roleID := ""
	if claims.SessionID != "" {
		sess, err := s.sessions.GetByTokenHash(ctx, refreshHash)
		if err != nil {
			return Credential{}, fmt.Errorf("refresh: %w", err)
		}
		if session.StateOf(sess) != session.StateActive {
			return Credential{}, apierr.Authenticationf("session %s is no longer active", sess.ID)
		}
		roleID = sess.RoleID
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return Credential{}, fmt.Errorf("refresh: %w", err)
	}

	cred, err := s.issue(user.ID, user.AccountID, user.Username, user.IsRoot, claims.SessionID, roleID)
	if err != nil {
		return Credential{}, err
	}
	if claims.SessionID != "" {
		if err := s.sessions.Finalize(ctx, claims.SessionID, credentials.HashToken(cred.RefreshToken)); err != nil {
			return Credential{}, fmt.Errorf("refresh: %w", err)
		}
	}
	if err := s.rev.Revoke(ctx, refreshHash, models.TokenRefresh, claims.UserID, claims.AccountID, "rotated", "", "", claims.ExpiresAt.Time); err != nil {
		return Credential{}, fmt.Errorf("refresh: %w", err)
	}
	return cred, nil
}

// Logout revokes both tokens of a credential pair and, if they carry a
// session, terminates that session too. Logout is idempotent: an
// already-expired token is silently accepted.
func (s *STSService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if claims, err := s.issuer.ParseAccessToken(accessToken); err == nil {
			if err := s.rev.Revoke(ctx, credentials.HashToken(accessToken), models.TokenAccess, claims.UserID, claims.AccountID, "logout", "", "", claims.ExpiresAt.Time); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			if claims.SessionID != "" {
				if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
			}
		}
	}
	if refreshToken != "" {
		if claims, err := s.issuer.ParseRefreshToken(refreshToken); err == nil {
			if err := s.rev.Revoke(ctx, credentials.HashToken(refreshToken), models.TokenRefresh, claims.UserID, claims.AccountID, "logout", "", "", claims.ExpiresAt.Time); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
		}
	}
	return nil
}

// RevokeAll invalidates every credential ever issued to userID, per §4.10's
// global-revocation row.
func (s *STSService) RevokeAll(ctx context.Context, userID, accountID, reason string) error {
	if err := s.rev.RevokeAllForUser(ctx, userID, accountID, reason); err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}
	return nil
}

func (s *STSService) issue(userID, accountID, username string, isRoot bool, sessionID, roleID string) (Credential, error) {
	access, err := s.issuer.IssueAccessToken(userID, accountID, username, isRoot, sessionID, roleID)
	if err != nil {
		return Credential{}, err
	}
	refresh, err := s.issuer.IssueRefreshToken(userID, accountID, sessionID, sessionID)
	if err != nil {
		return Credential{}, err
	}
	claims, err := s.issuer.ParseAccessToken(access)
	if err != nil {
		return Credential{}, apierr.Internalf(err, "parse just-issued access token")
	}
	return Credential{AccessToken: access, RefreshToken: refresh, ExpiresAt: claims.ExpiresAt.Time}, nil
}
