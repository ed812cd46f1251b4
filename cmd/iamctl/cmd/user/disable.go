package user

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var disableCmd = &cobra.Command{
	Use:   "disable [userID]",
	Short: "Disable a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		if err := b.Users.DisableUser(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("disable user: %w", err)
		}

		pterm.Success.Printf("User %s disabled\n", args[0])
		return nil
	},
}
