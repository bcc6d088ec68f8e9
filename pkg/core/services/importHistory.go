package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tcardoso/designa/pkg/core/model"
)

// ImportHistoryStore defines the database operations needed for an import.
type ImportHistoryStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	InsertHistoryRecords(ctx context.Context, records []model.HistoryRecord) error
}

// ImportedRow is one raw row from an external spreadsheet export. Part types
// arrive as free-text titles and publisher names as whatever the previous
// system stored.
type ImportedRow struct {
	WeekID        string
	Date          string
	PartTitle     string
	Role          model.Role
	PublisherName string
}

// ImportResult reports what an import run wrote and what it could not place.
type ImportResult struct {
	BatchID    string
	Inserted   int
	Unresolved []string
	Skipped    []string
}

// ImportHistory canonicalizes raw rows into immutable history records and
// persists them under a single batch id. Rows whose part title cannot be
// mapped to a known type are skipped and reported; names that match no
// known publisher are kept with the raw name only, so aliases added later
// still resolve them at ranking time.
func ImportHistory(
	ctx context.Context,
	store ImportHistoryStore,
	logger *zap.Logger,
	rows []ImportedRow,
) (*ImportResult, error) {
	publishers, err := store.LoadPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}

	result := &ImportResult{BatchID: uuid.New().String()}
	now := time.Now()

	var records []model.HistoryRecord
	for _, row := range rows {
		partType := model.CanonicalPartType(row.PartTitle)
		if partType == model.PartTypeUnknown {
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("%s: unrecognized part %q", row.WeekID, row.PartTitle))
			continue
		}
		if !partType.IsAssignable() {
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("%s: %q is not an assignable part", row.WeekID, row.PartTitle))
			continue
		}
		if row.PublisherName == "" {
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("%s: %q has no publisher name", row.WeekID, row.PartTitle))
			continue
		}

		role := row.Role
		if !role.IsValid() {
			role = model.RolePrimary
		}

		record := model.HistoryRecord{
			ID:               uuid.New().String(),
			WeekID:           row.WeekID,
			Date:             row.Date,
			Type:             partType,
			Role:             role,
			RawPublisherName: row.PublisherName,
			Provenance:       model.ProvenanceImported,
			ImportBatchID:    result.BatchID,
			CreatedAt:        now,
		}
		if resolved := resolvePublisher(publishers, row.PublisherName); resolved != nil {
			record.ResolvedPublisherName = resolved.Name
		} else {
			result.Unresolved = append(result.Unresolved, row.PublisherName)
		}
		records = append(records, record)
	}

	if len(records) > 0 {
		if err := store.InsertHistoryRecords(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to insert history records: %w", err)
		}
	}
	result.Inserted = len(records)

	logger.Info("History import complete",
		zap.String("batch_id", result.BatchID),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("unresolved", len(result.Unresolved)))

	return result, nil
}

func resolvePublisher(publishers []model.Publisher, name string) *model.Publisher {
	for i := range publishers {
		if publishers[i].MatchesName(name) {
			return &publishers[i]
		}
	}
	return nil
}
