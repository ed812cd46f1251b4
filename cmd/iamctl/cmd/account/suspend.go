package account

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var suspendCmd = &cobra.Command{
	Use:   "suspend [accountID]",
	Short: "Suspend an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		if err := b.Accounts.SuspendAccount(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("suspend account: %w", err)
		}

		pterm.Success.Printf("Account %s suspended\n", args[0])
		return nil
	},
}
