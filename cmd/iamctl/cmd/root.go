package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/account"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/group"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/policy"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/role"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/session"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/sts"
	"github.com/terraconstructs/iamcore/cmd/iamctl/cmd/user"
	"github.com/terraconstructs/iamcore/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "iamctl",
	Short: "iamctl is the administrative CLI for iamcore",
	Long: `iamctl manages accounts, users, groups, policies, and roles directly
against the iamcore database: account bootstrap, policy authoring and
attachment, role creation, and session/token revocation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		account.SetConfig(cfg)
		user.SetConfig(cfg)
		group.SetConfig(cfg)
		policy.SetConfig(cfg)
		role.SetConfig(cfg)
		sts.SetConfig(cfg)
		session.SetConfig(cfg)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "Config file path (YAML/JSON/TOML - overrides default search)")
	viper.BindPFlag("config_file", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (DATABASE_URL)")
	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("db-url"))

	rootCmd.AddCommand(account.Cmd)
	rootCmd.AddCommand(user.Cmd)
	rootCmd.AddCommand(group.Cmd)
	rootCmd.AddCommand(policy.Cmd)
	rootCmd.AddCommand(role.Cmd)
	rootCmd.AddCommand(sts.Cmd)
	rootCmd.AddCommand(session.Cmd)
}

func initConfig() {
	if cfgFile := viper.GetString("config_file"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("iamctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.iamcore")
		viper.AddConfigPath("/etc/iamcore")
	}
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
