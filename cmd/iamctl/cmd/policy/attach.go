package policy

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	attachPolicyID string
	attachUserID   string
	attachGroupID  string
	attachRoleID   string
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach a policy to a user, group, or role",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := 0
		for _, t := range []string{attachUserID, attachGroupID, attachRoleID} {
			if t != "" {
				targets++
			}
		}
		if targets != 1 {
			return fmt.Errorf("exactly one of --user, --group, --role must be set")
		}

		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		switch {
		case attachUserID != "":
			err = b.Policies.AttachToUser(cmd.Context(), attachUserID, attachPolicyID)
		case attachGroupID != "":
			err = b.Policies.AttachToGroup(cmd.Context(), attachGroupID, attachPolicyID)
		default:
			err = b.Policies.AttachToRole(cmd.Context(), attachRoleID, attachPolicyID)
		}
		if err != nil {
			return fmt.Errorf("attach policy: %w", err)
		}

		pterm.Success.Printf("Policy %s attached\n", attachPolicyID)
		return nil
	},
}

func init() {
	attachCmd.Flags().StringVar(&attachPolicyID, "policy", "", "Policy ID to attach")
	attachCmd.Flags().StringVar(&attachUserID, "user", "", "Attach to this user ID")
	attachCmd.Flags().StringVar(&attachGroupID, "group", "", "Attach to this group ID")
	attachCmd.Flags().StringVar(&attachRoleID, "role", "", "Attach to this role ID")
	_ = attachCmd.MarkFlagRequired("policy")
}
