package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Show a client's learned keyword model",
		Long:  `Display the per-token category weights the engine has accumulated for a client.`,
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

			entries, err := store.ListKeywordEntries(cmd.Context(), clientID)
			if err != nil {
				return fmt.Errorf("failed to list keyword model: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No keyword weights learned for this client yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "TOKEN\tCATEGORY\tWEIGHT\tUSED")
			for i := range entries {
				e := &entries[i]
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\n", e.Token, e.Category, e.Weight, e.TimesUsed)
			}

			return nil
		},
	}

	addClientFlag(cmd)

	return cmd
}
