package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AccountStatus enumerates the Account lifecycle states.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountDeleted   AccountStatus = "deleted"
)

// Account is the multi-tenant isolation boundary: every non-system entity
// belongs to exactly one Account.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID        string        `bun:"id,pk"`
	Name      string        `bun:"name,notnull"`
	Email     string        `bun:"email,notnull,unique"`
	Status    AccountStatus `bun:"status,notnull"`
	CreatedAt time.Time     `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time     `bun:"updated_at,notnull,default:current_timestamp"`
}
