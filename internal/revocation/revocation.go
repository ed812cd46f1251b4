// Package revocation implements the Revocation Store (C9): a hybrid hot
// (in-memory, TTL'd) and cold (durable) store of revoked token hashes.
package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/repository"
)

type hotEntry struct {
	revokedAt time.Time
	expiresAt time.Time
	reason    string
}

// Store is the hybrid hot/cold revocation store described in §4.10.
type Store struct {
	cold repository.RevokedTokenRepository

	mu  sync.RWMutex
	hot map[string]hotEntry

	// hotTimeout bounds how long a hot-tier lookup is allowed to take
	// before IsRevoked falls through to the cold tier, per the
	// configurable revocationHotTimeoutMs.
	hotTimeout time.Duration
}

// NewStore builds a Store. hotTimeout of zero disables the fallback race
// and checks the hot tier synchronously.
func NewStore(cold repository.RevokedTokenRepository, hotTimeout time.Duration) *Store {
	return &Store{cold: cold, hot: make(map[string]hotEntry), hotTimeout: hotTimeout}
}

// Revoke computes no TTL itself — callers pass the token's real expiry.
// If expiresAt is not in the future, the token has already expired and the
// call is a no-op. Writes the cold row first (upsert-on-conflict refreshes
// revokedAt/reason), then repopulates the hot tier; a hot-tier write never
// fails since it is a plain in-memory map, so the two tiers cannot
// disagree on write.
func (s *Store) Revoke(ctx context.Context, tokenHash string, tokenType models.TokenType, userID, accountID, reason, ipAddress, userAgent string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	revokedAt := time.Now()
	row := &models.RevokedToken{
		TokenHash: tokenHash,
		TokenType: tokenType,
		UserID:    userID,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		Reason:    reason,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		RevokedAt: revokedAt,
	}
	if err := s.cold.Upsert(ctx, row); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.storeHot(tokenHash, hotEntry{revokedAt: revokedAt, expiresAt: expiresAt, reason: reason})
	return nil
}

// RevokeAllForUser inserts the synthetic global revocation row described in
// §4.10: any token for userID issued before this call's RevokedAt is
// rejected by IsRevoked.
func (s *Store) RevokeAllForUser(ctx context.Context, userID, accountID, reason string) error {
	row := &models.RevokedToken{
		TokenHash: models.RevokedTokenGlobalPrefix + userID,
		TokenType: models.TokenGlobal,
		UserID:    userID,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		Reason:    reason,
		RevokedAt: time.Now(),
	}
	if err := s.cold.Upsert(ctx, row); err != nil {
		return fmt.Errorf("revoke all tokens for user: %w", err)
	}
	s.storeHot(row.TokenHash, hotEntry{revokedAt: row.RevokedAt, expiresAt: row.ExpiresAt, reason: reason})
	return nil
}

// IsRevoked reports whether tokenHash (issued at issuedAt for userID) has
// been revoked, either directly or via a global revocation of every token
// for that user issued before the global revocation. On total failure of
// both tiers this fails closed: the token is treated as revoked.
func (s *Store) IsRevoked(ctx context.Context, tokenHash, userID string, issuedAt time.Time) (bool, error) {
	if entry, ok := s.checkHotWithTimeout(tokenHash); ok {
		return s.stillRevoked(entry), nil
	}

	revoked, err := s.checkCold(ctx, tokenHash)
	if err != nil {
		return true, fmt.Errorf("check revocation (fail closed): %w", err)
	}
	if revoked {
		return true, nil
	}

	globalRevoked, err := s.checkGlobal(ctx, userID, issuedAt)
	if err != nil {
		return true, fmt.Errorf("check global revocation (fail closed): %w", err)
	}
	return globalRevoked, nil
}

func (s *Store) stillRevoked(entry hotEntry) bool {
	return entry.expiresAt.After(time.Now())
}

func (s *Store) checkHotWithTimeout(tokenHash string) (hotEntry, bool) {
	if s.hotTimeout <= 0 {
		return s.checkHot(tokenHash)
	}

	type result struct {
		entry hotEntry
		ok    bool
	}
	resultCh := make(chan result, 1)
	go func() {
		entry, ok := s.checkHot(tokenHash)
		resultCh <- result{entry: entry, ok: ok}
	}()

	select {
	case r := <-resultCh:
		return r.entry, r.ok
	case <-time.After(s.hotTimeout):
		return hotEntry{}, false
	}
}

func (s *Store) checkHot(tokenHash string) (hotEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.hot[tokenHash]
	if !ok || !entry.expiresAt.After(time.Now()) {
		return hotEntry{}, false
	}
	return entry, true
}

func (s *Store) checkCold(ctx context.Context, tokenHash string) (bool, error) {
	row, err := s.cold.GetByTokenHash(ctx, tokenHash)
	if apierr.Is(err, apierr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !row.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	s.storeHot(tokenHash, hotEntry{revokedAt: row.RevokedAt, expiresAt: row.ExpiresAt, reason: row.Reason})
	return true, nil
}

func (s *Store) checkGlobal(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	globalHash := models.RevokedTokenGlobalPrefix + userID
	row, err := s.cold.GetByTokenHash(ctx, globalHash)
	if apierr.Is(err, apierr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !row.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	return row.RevokedAt.After(issuedAt), nil
}

func (s *Store) storeHot(tokenHash string, entry hotEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hot[tokenHash] = entry
}

// Cleanup removes expired rows from the cold tier and sweeps expired
// entries out of the hot tier, returning the number of cold rows removed.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	s.sweepHot()
	n, err := s.cold.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup revoked tokens: %w", err)
	}
	return n, nil
}

func (s *Store) sweepHot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for hash, entry := range s.hot {
		if !entry.expiresAt.After(now) {
			delete(s.hot, hash)
		}
	}
}

// RunCleanupLoop runs Cleanup on the given interval until ctx is
// cancelled. Intended to be launched in its own goroutine at startup.
func (s *Store) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Cleanup(ctx)
		}
	}
}
