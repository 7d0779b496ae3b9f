package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/engine"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a category for every draft row in a scope",
		Long: `Run the suggestion engine over the draft rows of one client/bank/period.

Suggestions fill the suggested fields only; final categorizations made
during review are never touched, so re-running is always safe.`,
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

			ruleSet, err := loadRules()
			if err != nil {
				return err
			}

			rows, err := engine.NewSuggester(store, ruleSet).Run(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("suggestion run failed: %w", err)
			}
			if len(rows) == 0 {
				fmt.Println("No draft rows in scope.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tDATE\tDESCRIPTION\tDEBIT\tCREDIT\tSUGGESTED\tCONF\tREASON")
			for i := range rows {
				row := &rows[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(row.ID),
					row.Date.Format("2006-01-02"),
					truncate(row.Description, 40),
					amountOrBlank(row.Debit),
					amountOrBlank(row.Credit),
					row.SuggestedCategory,
					row.Confidence,
					truncate(row.Reason, 60))
			}

			return nil
		},
	}

	addScopeFlags(cmd)

	return cmd
}
