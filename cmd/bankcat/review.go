package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Record final categorizations on draft rows",
		Long: `Set the final category on draft rows ahead of a commit. Final fields
belong to the user; the suggestion engine never overwrites them.`,
	}

	cmd.AddCommand(reviewSetCmd())
	cmd.AddCommand(reviewAcceptCmd())

	return cmd
}

func reviewSetCmd() *cobra.Command {
	var (
		category string
		vendor   string
	)

	cmd := &cobra.Command{
		Use:   "set <row-id>",
		Short: "Set the final category for one draft row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetFinalCategory(cmd.Context(), args[0], category, vendor); err != nil {
				return fmt.Errorf("failed to set final category: %w", err)
			}

			fmt.Printf("Row %s finalised as %q\n", shortID(args[0]), category)

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "final category (required)")
	cmd.Flags().StringVar(&vendor, "vendor", "", "final vendor")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func reviewAcceptCmd() *cobra.Command {
	var minConfidence int

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept high-confidence suggestions as final",
		Long: `Copy the suggested category and vendor into the final fields for every
unreviewed row in the scope whose confidence meets the threshold. Rows the
user already finalised are left alone.`,
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

			if minConfidence <= 0 {
				ruleSet, err := loadRules()
				if err != nil {
					return err
				}
				minConfidence = ruleSet.HighConfidence()
			}

			rows, err := store.GetDraftTransactions(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("failed to load draft transactions: %w", err)
			}

			accepted := 0
			for i := range rows {
				row := &rows[i]
				if row.Reviewed() || row.SuggestedCategory == "" || row.Confidence < minConfidence {
					continue
				}
				if err := store.SetFinalCategory(cmd.Context(), row.ID, row.SuggestedCategory, row.SuggestedVendor); err != nil {
					return fmt.Errorf("failed to accept row %s: %w", row.ID, err)
				}
				accepted++
			}

			fmt.Printf("Accepted %d of %d rows at confidence >= %d\n", accepted, len(rows), minConfidence)

			return nil
		},
	}

	addScopeFlags(cmd)
	cmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "confidence threshold (default: rule set high-confidence level)")

	return cmd
}
