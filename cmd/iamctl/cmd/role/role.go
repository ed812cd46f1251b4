package role

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) { cfg = c }

// Cmd is the parent command for role management.
var Cmd = &cobra.Command{
	Use:   "role",
	Short: "Manage roles",
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(assignCmd)
}
