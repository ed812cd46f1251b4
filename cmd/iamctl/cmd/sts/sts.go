package sts

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/config"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) { cfg = c }

// Cmd is the assume-role command, registered directly on the root so it
// reads as "iamctl assume-role ..." rather than nesting under a noun.
var Cmd = assumeRoleCmd
