package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func commitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commits",
		Short: "List commit history for a scope",
		Long:  `Display every commit ever made for one client/bank/period, newest first.`,
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

			commits, err := store.ListCommits(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("failed to list commits: %w", err)
			}
			if len(commits) == 0 {
				fmt.Println("No commits for this scope yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tSTATUS\tROWS\tACCURACY\tBY\tCREATED")
			for i := range commits {
				c := &commits[i]
				fmt.Fprintf(w, "%d\t%s\t%d\t%.0f%%\t%s\t%s\n",
					c.ID,
					c.Status,
					c.RowsCommitted,
					c.Accuracy*100,
					c.CommittedBy,
					c.CreatedAt.Format("2006-01-02 15:04"))
			}

			return nil
		},
	}

	addScopeFlags(cmd)

	return cmd
}
