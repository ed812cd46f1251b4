package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Role carries a trust document governing who may assume it. AccountID is
// empty for system roles (process-wide, shared across tenants).
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rl"`

	ID                       string          `bun:"id,pk"`
	AccountID                string          `bun:"account_id,nullzero"`
	Name                     string          `bun:"name,notnull"`
	Description              string          `bun:"description,nullzero"`
	Path                     string          `bun:"path,notnull,default:'/'"`
	AssumeRolePolicyDocument json.RawMessage `bun:"assume_role_policy_document,type:jsonb,notnull"`
	MaxSessionDuration       int             `bun:"max_session_duration,notnull,default:3600"`
	CreatedAt                time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt                time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsSystem reports whether this is a process-wide system role (no owning
// account), such as the "root" escape-hatch role.
func (r *Role) IsSystem() bool { return r.AccountID == "" }

// SystemRootRoleName is the canonical name of the root escape-hatch role
// checked directly by the Authorization Gate (C10), never via policy
// evaluation.
const SystemRootRoleName = "root"

// UserRoleAssignment grants a User standing access to a Role (as distinct
// from an ad-hoc AssumeRole session).
type UserRoleAssignment struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	UserID     string    `bun:"user_id,pk"`
	RoleID     string    `bun:"role_id,pk"`
	AssignedBy string    `bun:"assigned_by,notnull"`
	AssignedAt time.Time `bun:"assigned_at,notnull,default:current_timestamp"`
}
