package storage

import (
	"context"
	"fmt"

	"github.com/bankcat/bankcat/internal/model"
)

// ListKeywordEntries returns the full keyword model for a client, ordered by
// token then category. Suggestion runs load this once and score in memory so
// every row of a run observes the same snapshot.
func (s *SQLiteStorage) ListKeywordEntries(ctx context.Context, clientID int64) ([]model.KeywordEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listKeywordEntriesTx(ctx, s.db, clientID)
}

func (s *SQLiteStorage) listKeywordEntriesTx(ctx context.Context, q queryable, clientID int64) ([]model.KeywordEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT client_id, token, category, weight, times_used, updated_at
		FROM keyword_model
		WHERE client_id = ?
		ORDER BY token, category
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword model: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.KeywordEntry
	for rows.Next() {
		var entry model.KeywordEntry
		if err := rows.Scan(
			&entry.ClientID,
			&entry.Token,
			&entry.Category,
			&entry.Weight,
			&entry.TimesUsed,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan keyword entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// BumpKeyword adds delta to the weight of (client, token, category),
// creating the entry if it does not exist. Weights are additive only; a
// correction reinforces the new category without decrementing competitors.
func (s *SQLiteStorage) BumpKeyword(ctx context.Context, clientID int64, token, category string, delta float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token, "token"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return s.bumpKeywordTx(ctx, s.db, clientID, token, category, delta)
}

func (s *SQLiteStorage) bumpKeywordTx(ctx context.Context, q queryable, clientID int64, token, category string, delta float64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO keyword_model (client_id, token, category, weight, times_used, updated_at)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(client_id, token, category) DO UPDATE SET
			weight = weight + excluded.weight,
			times_used = times_used + 1,
			updated_at = CURRENT_TIMESTAMP
	`, clientID, token, category, delta)

	if err != nil {
		return fmt.Errorf("failed to bump keyword weight: %w", err)
	}

	return nil
}
