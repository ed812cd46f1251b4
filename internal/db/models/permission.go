package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Permission is a granular (service, action, resourcePattern) grant, the
// legacy row model that internal/legacypolicy compiles into synthetic
// policy Statements.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:perm"`

	ID              string          `bun:"id,pk"`
	AccountID       string          `bun:"account_id,nullzero"`
	Service         string          `bun:"service,notnull"`
	Action          string          `bun:"action,notnull"`
	ResourcePattern string          `bun:"resource_pattern,notnull"`
	Effect          string          `bun:"effect,notnull"`
	Conditions      json.RawMessage `bun:"conditions,type:jsonb,nullzero"`
	Description     string          `bun:"description,nullzero"`
	IsSystem        bool            `bun:"is_system,notnull,default:false"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// PolicyPermission links a Permission row into a Policy's granular grant
// set.
type PolicyPermission struct {
	bun.BaseModel `bun:"table:policy_permissions,alias:pp"`

	PolicyID     string    `bun:"policy_id,pk"`
	PermissionID string    `bun:"permission_id,pk"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	CreatedBy    string    `bun:"created_by,nullzero"`
}
