package role

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	createAccountID      string
	createName           string
	createPath           string
	createTrustDocFile   string
	createMaxSessionSecs int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a role from a trust policy document file",
	RunE: func(cmd *cobra.Command, args []string) error {
		trustDocument, err := os.ReadFile(createTrustDocFile)
		if err != nil {
			return fmt.Errorf("read trust document: %w", err)
		}

		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		r, err := b.Roles.CreateRole(cmd.Context(), createAccountID, createName, createPath, trustDocument, createMaxSessionSecs)
		if err != nil {
			return fmt.Errorf("create role: %w", err)
		}

		pterm.Success.Printf("Role %q created\n", r.Name)
		pterm.Info.Printf("Role ID: %s\n", r.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAccountID, "account", "", "Account ID the role belongs to")
	createCmd.Flags().StringVar(&createName, "name", "", "Role name")
	createCmd.Flags().StringVar(&createPath, "path", "/", "Role path (prefix-filterable label)")
	createCmd.Flags().StringVar(&createTrustDocFile, "trust-document", "", "Path to the trust policy document JSON file")
	createCmd.Flags().IntVar(&createMaxSessionSecs, "max-session-duration", 0, "Maximum assume-role session duration, seconds (defaults to 3600)")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("trust-document")
}
