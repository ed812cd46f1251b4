package policy

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	createAccountID string
	createName      string
	createPath      string
	createDocFile   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a policy from a JSON document file",
	RunE: func(cmd *cobra.Command, args []string) error {
		document, err := os.ReadFile(createDocFile)
		if err != nil {
			return fmt.Errorf("read policy document: %w", err)
		}

		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		p, err := b.Policies.CreatePolicy(cmd.Context(), createAccountID, createName, createPath, document)
		if err != nil {
			return fmt.Errorf("create policy: %w", err)
		}

		pterm.Success.Printf("Policy %q created\n", p.Name)
		pterm.Info.Printf("Policy ID: %s\n", p.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAccountID, "account", "", "Account ID the policy belongs to")
	createCmd.Flags().StringVar(&createName, "name", "", "Policy name")
	createCmd.Flags().StringVar(&createPath, "path", "/", "Policy path (prefix-filterable label)")
	createCmd.Flags().StringVar(&createDocFile, "document", "", "Path to the policy document JSON file")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("document")
}
