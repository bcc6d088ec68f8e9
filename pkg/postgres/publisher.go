package postgres

import (
	"context"
	"fmt"

	"github.com/tcardoso/designa/pkg/core/model"
)

const publisherColumns = `
	id, name, aliases, gender, condition, age_group, phone, email,
	is_baptized, is_serving, is_helper_only, is_not_qualified, requested_no_participation,
	can_give_talks, can_conduct_cbs, can_read_cbs, can_pray, can_preside,
	sec_treasures, sec_ministry, sec_living,
	availability_mode, exception_dates, available_dates, parent_ids, created_at`

// LoadPublishers retrieves all publishers, active and inactive.
func (d *DB) LoadPublishers(ctx context.Context) ([]model.Publisher, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+publisherColumns+` FROM publisher ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query publishers: %w", err)
	}
	defer rows.Close()

	var publishers []model.Publisher
	for rows.Next() {
		var p model.Publisher
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Aliases, &p.Gender, &p.Condition, &p.AgeGroup, &p.Phone, &p.Email,
			&p.IsBaptized, &p.IsServing, &p.IsHelperOnly, &p.IsNotQualified, &p.RequestedNoParticipation,
			&p.Privileges.CanGiveTalks, &p.Privileges.CanConductCBS, &p.Privileges.CanReadCBS,
			&p.Privileges.CanPray, &p.Privileges.CanPreside,
			&p.SectionPrivileges.Treasures, &p.SectionPrivileges.Ministry, &p.SectionPrivileges.Living,
			&p.Availability.Mode, &p.Availability.ExceptionDates, &p.Availability.AvailableDates,
			&p.ParentIDs, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan publisher: %w", err)
		}
		publishers = append(publishers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publishers: %w", err)
	}

	return publishers, nil
}

// UpsertPublisher inserts or updates a publisher by id.
func (d *DB) UpsertPublisher(ctx context.Context, p *model.Publisher) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO publisher (`+publisherColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			aliases = EXCLUDED.aliases,
			gender = EXCLUDED.gender,
			condition = EXCLUDED.condition,
			age_group = EXCLUDED.age_group,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			is_baptized = EXCLUDED.is_baptized,
			is_serving = EXCLUDED.is_serving,
			is_helper_only = EXCLUDED.is_helper_only,
			is_not_qualified = EXCLUDED.is_not_qualified,
			requested_no_participation = EXCLUDED.requested_no_participation,
			can_give_talks = EXCLUDED.can_give_talks,
			can_conduct_cbs = EXCLUDED.can_conduct_cbs,
			can_read_cbs = EXCLUDED.can_read_cbs,
			can_pray = EXCLUDED.can_pray,
			can_preside = EXCLUDED.can_preside,
			sec_treasures = EXCLUDED.sec_treasures,
			sec_ministry = EXCLUDED.sec_ministry,
			sec_living = EXCLUDED.sec_living,
			availability_mode = EXCLUDED.availability_mode,
			exception_dates = EXCLUDED.exception_dates,
			available_dates = EXCLUDED.available_dates,
			parent_ids = EXCLUDED.parent_ids
	`,
		p.ID, p.Name, p.Aliases, p.Gender, p.Condition, p.AgeGroup, p.Phone, p.Email,
		p.IsBaptized, p.IsServing, p.IsHelperOnly, p.IsNotQualified, p.RequestedNoParticipation,
		p.Privileges.CanGiveTalks, p.Privileges.CanConductCBS, p.Privileges.CanReadCBS,
		p.Privileges.CanPray, p.Privileges.CanPreside,
		p.SectionPrivileges.Treasures, p.SectionPrivileges.Ministry, p.SectionPrivileges.Living,
		p.Availability.Mode, p.Availability.ExceptionDates, p.Availability.AvailableDates,
		p.ParentIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert publisher %s: %w", p.ID, err)
	}
	return nil
}
