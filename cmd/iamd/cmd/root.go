package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "iamd",
	Short: "iamd is the IAM/STS core server",
	Long: `iamd evaluates policy documents, resolves attached policies for
principals, and issues/revokes session credentials. It exposes a thin
HTTP surface over the Authorization Gate and STS-like endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "Config file path (YAML/JSON/TOML - overrides default search)")
	viper.BindPFlag("config_file", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (SERVER_ADDR)")
	rootCmd.PersistentFlags().String("server-url", "", "Server base URL advertised to clients (SERVER_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (DEBUG)")
	rootCmd.PersistentFlags().Int("max-db-connections", 0, "Max DB connections (DB_POOL_MAX)")

	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("db-url"))
	viper.BindPFlag("server_addr", rootCmd.PersistentFlags().Lookup("server-addr"))
	viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server-url"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("max_db_connections", rootCmd.PersistentFlags().Lookup("max-db-connections"))

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile := viper.GetString("config_file"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("iamd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.iamcore")
		viper.AddConfigPath("/etc/iamcore")
	}

	_ = viper.ReadInConfig()
}

// GetConfig returns the loaded configuration. Valid only after the root
// command's PersistentPreRunE has executed.
func GetConfig() *config.Config {
	return cfg
}

// SetVersion sets version information from the main package.
func SetVersion(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("iamd version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		fmt.Printf("  by: %s\n", builtBy)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
