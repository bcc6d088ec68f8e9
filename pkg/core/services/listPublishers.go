package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/eligibility"
	"github.com/tcardoso/designa/pkg/core/history"
	"github.com/tcardoso/designa/pkg/core/model"
)

// ListPublishersStore defines the database operations needed for the pool
// overview.
type ListPublishersStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error)
	LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error)
}

// PublisherOverview is one pool entry with its overall participation profile.
type PublisherOverview struct {
	Publisher model.Publisher
	Count     int
	LastDate  string
	Never     bool
}

// ListPublishersResult is the pool overview: every publisher with overall
// participation, plus aggregate availability stats.
type ListPublishersResult struct {
	Publishers []PublisherOverview
	Stats      eligibility.Stats
}

// ListPublishers returns every publisher sorted by name, each with an
// all-types participation profile, together with a summary of how much of
// the pool is actually assignable.
func ListPublishers(
	ctx context.Context,
	store ListPublishersStore,
	cfg *config.Config,
	logger *zap.Logger,
) (*ListPublishersResult, error) {
	now := time.Now()

	publishers, err := store.LoadPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}

	ledgerFrom := mondayOf(now.AddDate(0, 0, -7*cfg.Engine.MaxLookbackWeeks)).Format(weekIDLayout)
	parts, err := store.GetPartsFromWeek(ctx, ledgerFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to load parts: %w", err)
	}

	imported, err := store.LoadHistoryRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history records: %w", err)
	}

	ledger := history.NewLedger(imported, parts)
	pool := publisherPointers(publishers)

	result := &ListPublishersResult{Stats: eligibility.Summarize(pool)}
	for _, p := range pool {
		profile := ledger.BuildProfile(p, history.Scope{}, now)
		result.Publishers = append(result.Publishers, PublisherOverview{
			Publisher: *p,
			Count:     profile.Count,
			LastDate:  profile.LastDate,
			Never:     profile.Never(),
		})
	}

	sort.Slice(result.Publishers, func(i, j int) bool {
		return result.Publishers[i].Publisher.Name < result.Publishers[j].Publisher.Name
	})

	logger.Debug("Listed publishers",
		zap.Int("total", len(result.Publishers)),
		zap.Int("eligible", result.Stats.Eligible))

	return result, nil
}
