package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserStatus enumerates the User lifecycle states.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

// User is a human or machine principal belonging to an Account. Exactly one
// User per Account has IsRoot set.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           string     `bun:"id,pk"`
	AccountID    string     `bun:"account_id,notnull"`
	Username     string     `bun:"username,notnull"`
	Email        string     `bun:"email,nullzero"`
	PasswordHash string     `bun:"password_hash,notnull"`
	IsRoot       bool       `bun:"is_root,notnull,default:false"`
	FirstName    string     `bun:"first_name,nullzero"`
	LastName     string     `bun:"last_name,nullzero"`
	Status       UserStatus `bun:"status,notnull"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
