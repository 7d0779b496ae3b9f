package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func vendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Show a client's learned vendor memory",
		Long:  `Display every vendor-key-to-category mapping the engine has learned for a client.`,
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

			entries, err := store.ListVendorMemory(cmd.Context(), clientID)
			if err != nil {
				return fmt.Errorf("failed to list vendor memory: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No vendor memory learned for this client yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "VENDOR KEY\tCATEGORY\tCONF\tCONFIRMED\tLAST SEEN")
			for i := range entries {
				e := &entries[i]
				lastSeen := ""
				if !e.LastSeen.IsZero() {
					lastSeen = e.LastSeen.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					e.VendorKey, e.Category, e.Confidence, e.TimesConfirmed, lastSeen)
			}

			return nil
		},
	}

	addClientFlag(cmd)

	return cmd
}
