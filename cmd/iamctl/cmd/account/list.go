package account

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		accounts, err := b.Accounts.ListAccounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}

		table := pterm.TableData{{"ID", "NAME", "EMAIL", "STATUS"}}
		for _, a := range accounts {
			table = append(table, []string{a.ID, a.Name, a.Email, string(a.Status)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}
