package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Bring the database schema up to the current version. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Printf("Database schema is at version %d\n", storage.ExpectedSchemaVersion)

			return nil
		},
	}
}
