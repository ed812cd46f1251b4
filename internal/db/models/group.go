package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Group is a named collection of Users within an Account, used to attach
// policies collectively.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:grp"`

	ID          string    `bun:"id,pk"`
	AccountID   string    `bun:"account_id,notnull"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,nullzero"`
	Path        string    `bun:"path,notnull,default:'/'"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// GroupMembership links a User into a Group.
type GroupMembership struct {
	bun.BaseModel `bun:"table:user_groups,alias:ug"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	GroupID   string    `bun:"group_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
