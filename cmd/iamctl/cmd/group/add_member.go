package group

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var addMemberCmd = &cobra.Command{
	Use:   "add-member [groupID] [userID]",
	Short: "Add a user to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		groupID, userID := args[0], args[1]
		if err := b.Groups.AddMember(cmd.Context(), userID, groupID); err != nil {
			return fmt.Errorf("add member: %w", err)
		}

		pterm.Success.Printf("User %s added to group %s\n", userID, groupID)
		return nil
	},
}
