package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/model"
)

func seedCmd() *cobra.Command {
	var (
		clientName string
		bankName   string
		period     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo client with sample draft rows",
		Long: `Create a demo client, bank, starter category master, and a month of
sample draft transactions for trying the suggest/review/commit cycle.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			periodStart, err := time.Parse("2006-01", period)
			if err != nil {
				return fmt.Errorf("invalid period %q (want YYYY-MM): %w", period, err)
			}

			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			clientID, err := store.CreateClient(ctx, clientName)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			bankID, err := store.CreateBank(ctx, clientID, bankName, "Current")
			if err != nil {
				return fmt.Errorf("failed to create bank: %w", err)
			}

			for _, cat := range starterCategories() {
				if _, err := store.CreateCategory(ctx, clientID, cat.Name, cat.Type, cat.Nature); err != nil {
					return fmt.Errorf("failed to create category %q: %w", cat.Name, err)
				}
			}

			drafts := demoDrafts(clientID, bankID, period, periodStart)
			if err := store.SaveDraftTransactions(ctx, drafts); err != nil {
				return fmt.Errorf("failed to save draft transactions: %w", err)
			}

			fmt.Printf("Seeded client %d (%s), bank %d (%s), %d categories, %d draft rows for %s\n",
				clientID, clientName, bankID, bankName, len(starterCategories()), len(drafts), period)
			fmt.Printf("Next: bankcat suggest --client %d --bank %d --period %s\n",
				clientID, bankID, period)

			return nil
		},
	}

	cmd.Flags().StringVar(&clientName, "client-name", "Demo Client", "name of the demo client")
	cmd.Flags().StringVar(&bankName, "bank-name", "Demo Bank", "name of the demo bank")
	cmd.Flags().StringVar(&period, "period", time.Now().Format("2006-01"), "period to seed (YYYY-MM)")

	return cmd
}

// starterCategories is the category master the default rule pack targets.
func starterCategories() []model.Category {
	return []model.Category{
		{Name: "Bank Charges", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "Cash Withdrawal", Type: model.CategoryTypeOther, Nature: model.NatureDebit},
		{Name: "Consulting Fee", Type: model.CategoryTypeIncome, Nature: model.NatureCredit},
		{Name: "Computer Expenses", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "Internal Transfer", Type: model.CategoryTypeOther, Nature: model.NatureAny},
		{Name: "Depreciation", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "Sales", Type: model.CategoryTypeIncome, Nature: model.NatureCredit},
		{Name: "General Expense", Type: model.CategoryTypeExpense, Nature: model.NatureAny},
	}
}

func demoDrafts(clientID, bankID int64, period string, periodStart time.Time) []model.DraftTransaction {
	day := func(d int) time.Time { return periodStart.AddDate(0, 0, d-1) }

	return []model.DraftTransaction{
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(2),
			Description: "POS PURCHASE AMAZON MKTP 451289",
			Debit:       dec("129.99"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(3),
			Description: "POS AMAZON MKTP 451289",
			Debit:       dec("129.99"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(5),
			Description: "MONTHLY ACCOUNT FEE",
			Debit:       dec("5.50"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(9),
			Description: "ATM CASH WITHDRAWAL 009871",
			Debit:       dec("200.00"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(12),
			Description: "EFT PAYMENT RECEIVED INVOICE 10042",
			Credit:      dec("1000.00"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(15),
			Description: "TRANSFER TO SAVINGS 440218",
			Debit:       dec("500.00"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(20),
			Description: "GODADDY HOSTING RENEWAL",
			Debit:       dec("34.20"),
		},
		{
			ClientID: clientID, BankID: bankID, Period: period,
			Date:        day(28),
			Description: "CLOSING BALANCE",
			Balance:     dec("4130.31"),
		},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
