package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/eligibility"
	"github.com/tcardoso/designa/pkg/core/history"
	"github.com/tcardoso/designa/pkg/core/model"
	"github.com/tcardoso/designa/pkg/core/ranking"
)

// ExplainStore defines the database operations needed to explain a ranking.
type ExplainStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error)
	LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error)
}

// RankedCandidate is one line of an explanation, in ranked order.
type RankedCandidate struct {
	Name        string
	Explanation string
	Fallback    bool
	// InCooldown flags a candidate the generator would skip; manual
	// selection may still override.
	InCooldown bool
}

// ExplainResult reports the full ranked pool for one part, plus everyone
// who was filtered out and why.
type ExplainResult struct {
	Part       model.Part
	Candidates []RankedCandidate
	Excluded   []ExcludedPublisher
}

// ExcludedPublisher names a publisher the eligibility gate rejected.
type ExcludedPublisher struct {
	Name   string
	Reason string
}

// ExplainRanking runs the eligibility filter and the fairness ranking for a
// single part and returns the ordered pool with per-candidate explanations.
// It never mutates anything.
func ExplainRanking(
	ctx context.Context,
	store ExplainStore,
	cfg *config.Config,
	logger *zap.Logger,
	partID string,
) (*ExplainResult, error) {
	now := time.Now()

	ledgerFrom := mondayOf(now.AddDate(0, 0, -7*cfg.Engine.MaxLookbackWeeks)).Format(weekIDLayout)
	parts, err := store.GetPartsFromWeek(ctx, ledgerFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to load parts: %w", err)
	}

	var part *model.Part
	for i := range parts {
		if parts[i].ID == partID {
			part = &parts[i]
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("part %s not found", partID)
	}

	publishers, err := store.LoadPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}

	imported, err := store.LoadHistoryRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history records: %w", err)
	}

	if part.Date == "" {
		date, err := meetingDate(part.WeekID, cfg.Engine.MeetingWeekday)
		if err != nil {
			return nil, err
		}
		part.Date = date
	}

	ledger := history.NewLedger(imported, parts)
	pool := activePublishers(publishers)

	// Helper slots are judged against their primary: the pairing rules need
	// the primary's gender, and the primary is never their own helper.
	primaryGender := model.Gender("")
	primaryName := ""
	if part.Role == model.RoleHelper {
		if primary := siblingPrimary(parts, part); primary != nil {
			for _, p := range pool {
				if p.MatchesName(primary.ResolvedPublisherName) {
					primaryGender = p.Gender
					primaryName = p.Name
					break
				}
			}
		}
	}

	req := eligibility.Request{
		Type:          part.Type,
		Role:          part.Role,
		Section:       part.Section,
		MeetingDate:   part.Date,
		PastWeek:      part.WeekID < mondayOf(now).Format(weekIDLayout),
		PrimaryGender: primaryGender,
	}

	result := &ExplainResult{Part: *part}
	var eligible []*model.Publisher
	for _, p := range pool {
		if primaryName != "" && p.Name == primaryName {
			result.Excluded = append(result.Excluded, ExcludedPublisher{
				Name:   p.Name,
				Reason: "serves as the primary on this part",
			})
			continue
		}
		check := eligibility.Check(p, req)
		if check.Eligible {
			eligible = append(eligible, p)
			continue
		}
		result.Excluded = append(result.Excluded, ExcludedPublisher{
			Name:   p.Name,
			Reason: check.Reason,
		})
	}

	ranked := ranking.Rank(eligible, part.Type, part.Role, ledger, rankingConfig(cfg.Engine), now)
	for _, c := range ranked {
		result.Candidates = append(result.Candidates, RankedCandidate{
			Name:        c.Publisher.Name,
			Explanation: c.Explain(),
			Fallback:    c.CategoryFallback,
			InCooldown: history.CooldownApplies(part.Type) &&
				ledger.InCooldown(c.Publisher, now, cfg.Engine.CooldownWeeks, cfg.Engine.HelperCooldownWeeks),
		})
	}

	logger.Debug("Ranking explained",
		zap.String("part", partID),
		zap.Int("candidates", len(result.Candidates)),
		zap.Int("excluded", len(result.Excluded)))

	return result, nil
}

// siblingPrimary finds the resolved primary part sharing the helper's week
// and part number.
func siblingPrimary(parts []model.Part, helper *model.Part) *model.Part {
	for i := range parts {
		p := &parts[i]
		if p.WeekID == helper.WeekID && p.Seq == helper.Seq &&
			p.Role == model.RolePrimary && p.ResolvedPublisherName != "" {
			return p
		}
	}
	return nil
}
