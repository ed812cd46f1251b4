package group

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	createAccountID string
	createName      string
	createPath      string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new group",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		g, err := b.Groups.CreateGroup(cmd.Context(), createAccountID, createName, createPath)
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		pterm.Success.Printf("Group %q created\n", g.Name)
		pterm.Info.Printf("Group ID: %s\n", g.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAccountID, "account", "", "Account ID the group belongs to")
	createCmd.Flags().StringVar(&createName, "name", "", "Group name")
	createCmd.Flags().StringVar(&createPath, "path", "/", "Group path (prefix-filterable label)")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("name")
}
