package session

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	revokeUserID    string
	revokeAccountID string
	revokeReason    string
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke every outstanding access/refresh token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		if err := b.STS.RevokeAll(cmd.Context(), revokeUserID, revokeAccountID, revokeReason); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}

		pterm.Success.Printf("All sessions for user %s revoked\n", revokeUserID)
		return nil
	},
}

func init() {
	revokeCmd.Flags().StringVar(&revokeUserID, "user", "", "User ID whose sessions should be revoked")
	revokeCmd.Flags().StringVar(&revokeAccountID, "account", "", "Account ID the user belongs to")
	revokeCmd.Flags().StringVar(&revokeReason, "reason", "admin-revoked", "Reason recorded against the revocation")
	_ = revokeCmd.MarkFlagRequired("user")
	_ = revokeCmd.MarkFlagRequired("account")
}
