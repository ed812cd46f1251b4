package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenType classifies what a revocation row covers.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenGlobal  TokenType = "global"
)

// RevokedTokenGlobalPrefix prefixes the synthetic tokenHash used by
// revokeAllForUser, e.g. "ALL_TOKENS_<userId>".
const RevokedTokenGlobalPrefix = "ALL_TOKENS_"

// RevokedToken is the cold-tier durable row backing the Revocation Store
// (C9), named "token_blacklist" per the external schema.
type RevokedToken struct {
	bun.BaseModel `bun:"table:token_blacklist,alias:tbl"`

	TokenHash string    `bun:"token_hash,pk"`
	TokenType TokenType `bun:"token_type,notnull"`
	UserID    string    `bun:"user_id,notnull"`
	AccountID string    `bun:"account_id,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	Reason    string    `bun:"reason,nullzero"`
	IPAddress string    `bun:"ip_address,nullzero"`
	UserAgent string    `bun:"user_agent,nullzero"`
	RevokedAt time.Time `bun:"revoked_at,notnull,default:current_timestamp"`
}
