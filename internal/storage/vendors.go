package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bankcat/bankcat/internal/common"
	"github.com/bankcat/bankcat/internal/model"
)

// GetVendorMemory retrieves the learned entry for (client, vendor key).
// A miss returns common.ErrNotFound; absence is not a failure.
func (s *SQLiteStorage) GetVendorMemory(ctx context.Context, clientID int64, vendorKey string) (*model.VendorMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(vendorKey, "vendorKey"); err != nil {
		return nil, err
	}
	return s.getVendorMemoryTx(ctx, s.db, clientID, vendorKey)
}

func (s *SQLiteStorage) getVendorMemoryTx(ctx context.Context, q queryable, clientID int64, vendorKey string) (*model.VendorMemory, error) {
	var entry model.VendorMemory

	err := q.QueryRowContext(ctx, `
		SELECT client_id, vendor_key, category, confidence, times_confirmed, last_seen
		FROM vendor_memory
		WHERE client_id = ? AND vendor_key = ?
	`, clientID, vendorKey).Scan(
		&entry.ClientID,
		&entry.VendorKey,
		&entry.Category,
		&entry.Confidence,
		&entry.TimesConfirmed,
		&entry.LastSeen,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor memory: %w", err)
	}

	return &entry, nil
}

// SaveVendorMemory upserts a vendor memory entry, keyed by (client, vendor key).
func (s *SQLiteStorage) SaveVendorMemory(ctx context.Context, entry *model.VendorMemory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVendorMemory(entry); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveVendorMemoryTx(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveVendorMemoryTx(ctx context.Context, q queryable, entry *model.VendorMemory) error {
	if entry.LastSeen.IsZero() {
		entry.LastSeen = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO vendor_memory (client_id, vendor_key, category, confidence, times_confirmed, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, vendor_key) DO UPDATE SET
			category = excluded.category,
			confidence = excluded.confidence,
			times_confirmed = excluded.times_confirmed,
			last_seen = excluded.last_seen
	`, entry.ClientID, entry.VendorKey, entry.Category, entry.Confidence, entry.TimesConfirmed, entry.LastSeen)

	if err != nil {
		return fmt.Errorf("failed to save vendor memory: %w", err)
	}

	return nil
}

// ListVendorMemory returns every learned vendor for a client, ordered by
// vendor key for stable output.
func (s *SQLiteStorage) ListVendorMemory(ctx context.Context, clientID int64) ([]model.VendorMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listVendorMemoryTx(ctx, s.db, clientID)
}

func (s *SQLiteStorage) listVendorMemoryTx(ctx context.Context, q queryable, clientID int64) ([]model.VendorMemory, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT client_id, vendor_key, category, confidence, times_confirmed, last_seen
		FROM vendor_memory
		WHERE client_id = ?
		ORDER BY vendor_key
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor memory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.VendorMemory
	for rows.Next() {
		var entry model.VendorMemory
		if err := rows.Scan(
			&entry.ClientID,
			&entry.VendorKey,
			&entry.Category,
			&entry.Confidence,
			&entry.TimesConfirmed,
			&entry.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor memory: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
