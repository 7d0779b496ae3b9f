package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bankcat/bankcat/internal/config"
	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/rules"
	"github.com/bankcat/bankcat/internal/storage"
)

// openStorage opens the configured database and applies pending migrations.
// Callers own the returned storage and must Close it.
func openStorage(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "bankcat", "bankcat.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// loadRules loads the configured rule set, falling back to the embedded
// defaults.
func loadRules() (*rules.RuleSet, error) {
	return rules.Load(config.ExpandPath(viper.GetString("rules.path")))
}

// addScopeFlags registers the flags that identify one (client, bank, period)
// batch of transactions.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("client", 0, "client ID (required)")
	cmd.Flags().Int64("bank", 0, "bank ID (required)")
	cmd.Flags().String("period", "", "period as YYYY-MM (required)")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("period")
}

// scopeFromFlags reads the scope flags back into a model.Scope.
func scopeFromFlags(cmd *cobra.Command) (model.Scope, error) {
	clientID, err := cmd.Flags().GetInt64("client")
	if err != nil {
		return model.Scope{}, err
	}
	bankID, err := cmd.Flags().GetInt64("bank")
	if err != nil {
		return model.Scope{}, err
	}
	period, err := cmd.Flags().GetString("period")
	if err != nil {
		return model.Scope{}, err
	}

	return model.Scope{ClientID: clientID, BankID: bankID, Period: period}, nil
}

// addClientFlag registers the client flag for commands that inspect learned
// state, which is scoped per client rather than per statement.
func addClientFlag(cmd *cobra.Command) {
	cmd.Flags().Int64("client", 0, "client ID (required)")
	_ = cmd.MarkFlagRequired("client")
}

func clientFromFlags(cmd *cobra.Command) (int64, error) {
	return cmd.Flags().GetInt64("client")
}

func amountOrBlank(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// shortID trims a row UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
