package session

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) { cfg = c }

// Cmd is the parent command for session/token revocation.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions and token revocation",
}

func init() {
	Cmd.AddCommand(revokeCmd)
}
