package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is a live or terminated AssumeRole credential, named
// "role_sessions" per the external schema.
type Session struct {
	bun.BaseModel `bun:"table:role_sessions,alias:sess"`

	ID               string    `bun:"id,pk"`
	AccountID        string    `bun:"account_id,notnull"`
	RoleID           string    `bun:"role_id,notnull"`
	UserID           string    `bun:"user_id,nullzero"`
	SessionName      string    `bun:"session_name,notnull"`
	ExternalID       string    `bun:"external_id,nullzero"`
	SourceIP         string    `bun:"source_ip,nullzero"`
	UserAgent        string    `bun:"user_agent,nullzero"`
	AssumedAt        time.Time `bun:"assumed_at,notnull,default:current_timestamp"`
	ExpiresAt        time.Time `bun:"expires_at,notnull"`
	SessionTokenHash string    `bun:"session_token_hash,notnull,unique"`
	IsActive         bool      `bun:"is_active,notnull,default:true"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
