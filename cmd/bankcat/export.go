package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/model"
)

// committedCSVRow is the CSV shape of one committed ledger row.
type committedCSVRow struct {
	Date              string `csv:"date"`
	Description       string `csv:"description"`
	Debit             string `csv:"debit"`
	Credit            string `csv:"credit"`
	Balance           string `csv:"balance"`
	Category          string `csv:"category"`
	Vendor            string `csv:"vendor"`
	SuggestedCategory string `csv:"suggested_category"`
	Confidence        int    `csv:"confidence"`
	Reason            string `csv:"reason"`
	CommitID          int64  `csv:"commit_id"`
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export committed ledger rows to CSV",
		Long:  `Write the committed (immutable) ledger rows of a scope as CSV, to a file or stdout.`,
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

			active, err := store.GetActiveCommit(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("no active commit for client=%d bank=%d period=%s: %w",
					scope.ClientID, scope.BankID, scope.Period, err)
			}

			all, err := store.GetCommittedTransactions(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("failed to load committed transactions: %w", err)
			}

			// The committed table keeps superseded commits for audit; export
			// only the rows of the commit that currently stands.
			rows := make([]model.CommittedTransaction, 0, len(all))
			for i := range all {
				if all[i].CommitID == active.ID {
					rows = append(rows, all[i])
				}
			}

			var out io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			csvRows := make([]committedCSVRow, 0, len(rows))
			for i := range rows {
				csvRows = append(csvRows, toCSVRow(&rows[i]))
			}

			if err := gocsv.Marshal(&csvRows, out); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}

			if outPath != "" {
				fmt.Printf("Exported %d rows to %s\n", len(csvRows), outPath)
			}

			return nil
		},
	}

	addScopeFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	return cmd
}

func toCSVRow(txn *model.CommittedTransaction) committedCSVRow {
	return committedCSVRow{
		Date:              txn.Date.Format("2006-01-02"),
		Description:       txn.Description,
		Debit:             amountOrBlank(txn.Debit),
		Credit:            amountOrBlank(txn.Credit),
		Balance:           amountOrBlank(txn.Balance),
		Category:          txn.Category,
		Vendor:            txn.Vendor,
		SuggestedCategory: txn.SuggestedCategory,
		Confidence:        txn.Confidence,
		Reason:            txn.Reason,
		CommitID:          txn.CommitID,
	}
}
