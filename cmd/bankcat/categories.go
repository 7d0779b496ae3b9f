package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bankcat/bankcat/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage a client's category master",
		Long:  `List and add the categories transactions may be coded against.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.GetCategories(cmd.Context(), clientID)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Println("No categories found. Use 'bankcat categories add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tNAME\tTYPE\tNATURE")
			for i := range categories {
				cat := &categories[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Type, cat.Nature)
			}

			return nil
		},
	}

	addClientFlag(cmd)

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		nature       string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category to a client's master",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			catType, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}
			catNature, err := parseCategoryNature(nature)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			category, err := store.CreateCategory(cmd.Context(), clientID, args[0], catType, catNature)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Printf("Created category %q (ID: %d, %s/%s)\n",
				category.Name, category.ID, category.Type, category.Nature)

			return nil
		},
	}

	addClientFlag(cmd)
	cmd.Flags().StringVar(&categoryType, "type", string(model.CategoryTypeExpense), "category type (Income, Expense, Other)")
	cmd.Flags().StringVar(&nature, "nature", string(model.NatureAny), "ledger side the category may appear on (Dr, Cr, Any)")

	return cmd
}

func parseCategoryType(s string) (model.CategoryType, error) {
	switch model.CategoryType(s) {
	case model.CategoryTypeIncome, model.CategoryTypeExpense, model.CategoryTypeOther:
		return model.CategoryType(s), nil
	}
	return "", fmt.Errorf("invalid category type %q (want Income, Expense, or Other)", s)
}

func parseCategoryNature(s string) (model.CategoryNature, error) {
	switch model.CategoryNature(s) {
	case model.NatureDebit, model.NatureCredit, model.NatureAny:
		return model.CategoryNature(s), nil
	}
	return "", fmt.Errorf("invalid category nature %q (want Dr, Cr, or Any)", s)
}
