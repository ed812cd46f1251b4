package bunx

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/db/models"
)

// CreateSchema creates every table in the external schema (§6), in
// dependency order. Used by server bootstrap against a fresh database and
// by in-memory SQLite repository tests, which have no external migration
// runner.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Account)(nil),
		(*models.User)(nil),
		(*models.Group)(nil),
		(*models.GroupMembership)(nil),
		(*models.Role)(nil),
		(*models.UserRoleAssignment)(nil),
		(*models.Policy)(nil),
		(*models.Permission)(nil),
		(*models.PolicyPermission)(nil),
		(*models.UserPolicyAttachment)(nil),
		(*models.GroupPolicyAttachment)(nil),
		(*models.RolePolicyAttachment)(nil),
		(*models.Session)(nil),
		(*models.RevokedToken)(nil),
	}

	for _, table := range tables {
		if _, err := db.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
