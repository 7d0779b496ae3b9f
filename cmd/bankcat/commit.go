package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/engine"
)

func commitCmd() *cobra.Command {
	var committedBy string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Lock reviewed draft rows into the immutable ledger",
		Long: `Commit every draft row in a scope. The commit supersedes any previous
commit for the same scope, copies the rows into the immutable ledger, and
feeds the final categorizations back into vendor memory and the keyword
model. The commit is blocked entirely while any row lacks a final category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if committedBy == "" {
				committedBy = os.Getenv("USER")
			}

			result, err := engine.NewCoordinator(store).Commit(cmd.Context(), scope, committedBy)
			if err != nil {
				return err
			}

			fmt.Printf("Commit %d: %d rows locked, suggestion accuracy %.0f%%\n",
				result.CommitID, result.RowsCommitted, result.Accuracy*100)

			return nil
		},
	}

	addScopeFlags(cmd)
	cmd.Flags().StringVar(&committedBy, "by", "", "who is committing (default: $USER)")

	return cmd
}
