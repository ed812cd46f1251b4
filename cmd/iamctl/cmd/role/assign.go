package role

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var assignedBy string

var assignCmd = &cobra.Command{
	Use:   "assign [roleID] [userID]",
	Short: "Assign a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		roleID, userID := args[0], args[1]
		if err := b.Roles.AssignToUser(cmd.Context(), userID, roleID, assignedBy); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}

		pterm.Success.Printf("Role %s assigned to user %s\n", roleID, userID)
		return nil
	},
}

func init() {
	assignCmd.Flags().StringVar(&assignedBy, "assigned-by", "iamctl", "Principal recorded as having made the assignment")
}
