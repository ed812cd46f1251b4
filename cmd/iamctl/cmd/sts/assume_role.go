package sts

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
	"github.com/terraconstructs/iamcore/internal/service"
)

var (
	principalUserID string
	roleID          string
	sessionName     string
	externalID      string
	durationSecs    int
)

var assumeRoleCmd = &cobra.Command{
	Use:   "assume-role",
	Short: "Assume a role and print the resulting session credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		cred, err := b.STS.AssumeRole(cmd.Context(), service.AssumeRoleParams{
			PrincipalUserID: principalUserID,
			RoleID:          roleID,
			SessionName:     sessionName,
			ExternalID:      externalID,
			Duration:        time.Duration(durationSecs) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("assume role: %w", err)
		}

		pterm.Success.Println("Role assumed")
		table := pterm.TableData{
			{"ACCESS TOKEN", cred.AccessToken},
			{"REFRESH TOKEN", cred.RefreshToken},
			{"EXPIRES AT", cred.ExpiresAt.Format(time.RFC3339)},
		}
		return pterm.DefaultTable.WithData(table).Render()
	},
}

func init() {
	assumeRoleCmd.Flags().StringVar(&principalUserID, "user", "", "Principal user ID requesting the role")
	assumeRoleCmd.Flags().StringVar(&roleID, "role", "", "Role ID to assume")
	assumeRoleCmd.Flags().StringVar(&sessionName, "session-name", "cli-session", "Session name recorded for the assumed role")
	assumeRoleCmd.Flags().StringVar(&externalID, "external-id", "", "External ID, required when the trust policy demands one")
	assumeRoleCmd.Flags().IntVar(&durationSecs, "duration", 3600, "Requested session duration, seconds")
	_ = assumeRoleCmd.MarkFlagRequired("user")
	_ = assumeRoleCmd.MarkFlagRequired("role")
}
