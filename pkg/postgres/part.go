package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tcardoso/designa/pkg/core/model"
)

const partColumns = `
	id, week_id, date, seq, section, part_type, role, title, duration, room,
	resolved_publisher_id, resolved_publisher_name, raw_publisher_name, status`

func scanPart(rows pgx.Rows) (model.Part, error) {
	var p model.Part
	var resolvedID, resolvedName *string
	err := rows.Scan(
		&p.ID, &p.WeekID, &p.Date, &p.Seq, &p.Section, &p.Type, &p.Role,
		&p.Title, &p.Duration, &p.Room,
		&resolvedID, &resolvedName, &p.RawPublisherName, &p.Status,
	)
	if err != nil {
		return p, err
	}
	if resolvedID != nil {
		p.ResolvedPublisherID = *resolvedID
	}
	if resolvedName != nil {
		p.ResolvedPublisherName = *resolvedName
	}
	return p, nil
}

func (d *DB) queryParts(ctx context.Context, query string, args ...any) ([]model.Part, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	var parts []model.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parts: %w", err)
	}

	return parts, nil
}

// GetPartsByWeekID retrieves the parts of one meeting week in agenda order.
func (d *DB) GetPartsByWeekID(ctx context.Context, weekID string) ([]model.Part, error) {
	return d.queryParts(ctx,
		`SELECT `+partColumns+` FROM workbook_part WHERE week_id = $1 ORDER BY seq, role`,
		weekID)
}

// GetPartsFromWeek retrieves all parts on or after the given week id.
func (d *DB) GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error) {
	return d.queryParts(ctx,
		`SELECT `+partColumns+` FROM workbook_part WHERE week_id >= $1 ORDER BY week_id, seq, role`,
		fromWeekID)
}

// InsertParts inserts part records in one transaction.
func (d *DB) InsertParts(ctx context.Context, parts []model.Part) error {
	if len(parts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range parts {
		var resolvedID, resolvedName *string
		if p.ResolvedPublisherID != "" {
			resolvedID = &p.ResolvedPublisherID
		}
		if p.ResolvedPublisherName != "" {
			resolvedName = &p.ResolvedPublisherName
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO workbook_part (`+partColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, p.ID, p.WeekID, p.Date, p.Seq, p.Section, p.Type, p.Role,
			p.Title, p.Duration, p.Room, resolvedID, resolvedName,
			p.RawPublisherName, p.Status)
		if err != nil {
			return fmt.Errorf("failed to insert part %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdatePart applies a partial update to a part. Nil fields are untouched.
func (d *DB) UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error {
	set := ""
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if fields.ResolvedPublisherID != nil {
		add("resolved_publisher_id", nullable(*fields.ResolvedPublisherID))
	}
	if fields.ResolvedPublisherName != nil {
		add("resolved_publisher_name", nullable(*fields.ResolvedPublisherName))
	}
	if fields.Status != nil {
		add("status", string(*fields.Status))
	}
	if fields.Title != nil {
		add("title", *fields.Title)
	}

	if set == "" {
		return nil
	}

	tag, err := d.pool.Exec(ctx, `UPDATE workbook_part SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("failed to update part %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("part %s not found", id)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
