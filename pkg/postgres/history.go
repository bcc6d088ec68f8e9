package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tcardoso/designa/pkg/core/model"
)

// LoadHistoryRecords retrieves the full imported ledger, most recent first.
func (d *DB) LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, week_id, date, section, part_type, role,
			raw_publisher_name, resolved_publisher_name, provenance,
			import_batch_id, created_at
		FROM history_record
		ORDER BY date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history records: %w", err)
	}
	defer rows.Close()

	var records []model.HistoryRecord
	for rows.Next() {
		var r model.HistoryRecord
		if err := rows.Scan(
			&r.ID, &r.WeekID, &r.Date, &r.Section, &r.Type, &r.Role,
			&r.RawPublisherName, &r.ResolvedPublisherName, &r.Provenance,
			&r.ImportBatchID, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history records: %w", err)
	}

	return records, nil
}

// InsertHistoryRecords appends ledger records in one transaction. Existing
// ids are left untouched: the ledger is append-only and corrections arrive
// as new records.
func (d *DB) InsertHistoryRecords(ctx context.Context, records []model.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO history_record (
				id, week_id, date, section, part_type, role,
				raw_publisher_name, resolved_publisher_name, provenance, import_batch_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.WeekID, r.Date, r.Section, r.Type, r.Role,
			r.RawPublisherName, r.ResolvedPublisherName, r.Provenance, r.ImportBatchID)
		if err != nil {
			return fmt.Errorf("failed to insert history record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSetting retrieves a settings value; missing keys yield an empty string.
func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := d.pool.QueryRow(ctx, `SELECT value FROM setting WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a settings value.
func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO setting (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
