package group

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) { cfg = c }

// Cmd is the parent command for group management.
var Cmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(addMemberCmd)
}
