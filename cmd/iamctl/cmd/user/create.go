package user

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/cmd/iamctl/internal/bundle"
)

var (
	createAccountID string
	createUsername  string
	createEmail     string
	createPassword  string
	createIsRoot    bool
	createStdin     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := createPassword
		if createStdin {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		b, err := bundle.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer b.Close()

		u, err := b.Users.CreateUser(cmd.Context(), createAccountID, createUsername, createEmail, password, createIsRoot)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		pterm.Success.Printf("User %q created\n", u.Username)
		pterm.Info.Printf("User ID: %s\n", u.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAccountID, "account", "", "Account ID the user belongs to")
	createCmd.Flags().StringVar(&createUsername, "username", "", "Username")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	createCmd.Flags().StringVar(&createPassword, "password", "", "Password (use --stdin to avoid shell history)")
	createCmd.Flags().BoolVar(&createIsRoot, "root", false, "Create as the account's root user")
	createCmd.Flags().BoolVar(&createStdin, "stdin", false, "Read password from stdin instead of --password")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("username")
}
