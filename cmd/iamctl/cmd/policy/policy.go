package policy

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) { cfg = c }

// Cmd is the parent command for policy management.
var Cmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage policies",
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(attachCmd)
}
