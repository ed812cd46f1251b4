package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// PolicyType classifies the origin and mutability of a Policy.
type PolicyType string

const (
	PolicyTypeAWS    PolicyType = "AWS"
	PolicyTypeCustom PolicyType = "Custom"
	PolicyTypeInline PolicyType = "Inline"
	PolicyTypeSystem PolicyType = "System"
)

// Policy is a named, versioned policy document. AccountID is empty for
// system policies shared across tenants.
type Policy struct {
	bun.BaseModel `bun:"table:policies,alias:pol"`

	ID             string          `bun:"id,pk"`
	AccountID      string          `bun:"account_id,nullzero"`
	Name           string          `bun:"name,notnull"`
	Description    string          `bun:"description,nullzero"`
	Path           string          `bun:"path,notnull,default:'/'"`
	PolicyDocument json.RawMessage `bun:"policy_document,type:jsonb,notnull"`
	PolicyType     PolicyType      `bun:"policy_type,notnull"`
	IsAttachable   bool            `bun:"is_attachable,notnull,default:true"`
	CreatedAt      time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// TargetType enumerates the kinds of entity a Policy may be attached to.
type TargetType string

const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
	TargetRole  TargetType = "role"
)

// UserPolicyAttachment is a direct Policy attachment on a User.
type UserPolicyAttachment struct {
	bun.BaseModel `bun:"table:user_policies,alias:up"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id,notnull"`
	PolicyID   string    `bun:"policy_id,notnull"`
	AttachedAt time.Time `bun:"attached_at,notnull,default:current_timestamp"`
}

// GroupPolicyAttachment is a Policy attachment on a Group.
type GroupPolicyAttachment struct {
	bun.BaseModel `bun:"table:group_policies,alias:gp"`

	ID         string    `bun:"id,pk"`
	GroupID    string    `bun:"group_id,notnull"`
	PolicyID   string    `bun:"policy_id,notnull"`
	AttachedAt time.Time `bun:"attached_at,notnull,default:current_timestamp"`
}

// RolePolicyAttachment is a Policy attachment on a Role. AccountID is
// nullable to mirror system-role attachments.
type RolePolicyAttachment struct {
	bun.BaseModel `bun:"table:role_policies,alias:rp"`

	ID        string    `bun:"id,pk"`
	AccountID string    `bun:"account_id,nullzero"`
	RoleID    string    `bun:"role_id,notnull"`
	PolicyID  string    `bun:"policy_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
