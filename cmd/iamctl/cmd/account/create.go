package account

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	createName  string
	createEmail string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Bootstrap a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		acct, err := b.Accounts.CreateAccount(cmd.Context(), createName, createEmail)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		pterm.Success.Printf("Account %q created\n", acct.Name)
		pterm.Info.Printf("Account ID: %s\n", acct.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Account name")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Account contact email")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")
}
