package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/db/bunx"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for initializing the iamcore schema.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the iamcore schema",
	Long:  `Creates every table in §6's relational schema if it does not already exist. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, bunx.PoolConfig{MinConns: cfg.DBPoolMin, MaxConns: cfg.DBPoolMax})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		if err := bunx.CreateSchema(context.Background(), db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}

		log.Printf("Schema initialized successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
}
