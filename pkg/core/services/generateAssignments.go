package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/generator"
	"github.com/tcardoso/designa/pkg/core/history"
	"github.com/tcardoso/designa/pkg/core/model"
)

// GenerateStore defines the database operations needed for a generation run.
type GenerateStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error)
	LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error)
	UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error
}

// GenerateOptions controls a generation run at the service boundary.
type GenerateOptions struct {
	// Weeks restricts the run to specific week ids. Empty means the next
	// cfg.GenerationWeeks weeks starting with the current one.
	Weeks []string

	// DryRun previews the proposals without persisting.
	DryRun bool

	// Now overrides the reference time. Zero means time.Now().
	Now time.Time
}

// GenerateResult is the structured outcome surfaced to the caller.
type GenerateResult struct {
	Success   bool
	Message   string
	DryRun    bool
	Weeks     []string
	Assigned  []generator.Assignment
	Skipped   []generator.SkippedPart
	Committed int
	Errors    []string
}

// GenerateAssignments loads the pool, the planning-window parts, and the
// ledger, runs the assignment generator, and commits the plan unless dryRun
// is set. The prior state of every mutated part is captured into the
// session's undo ledger before mutation so the whole run can be reverted.
func GenerateAssignments(
	ctx context.Context,
	store GenerateStore,
	cfg *config.Config,
	logger *zap.Logger,
	session *Session,
	opts GenerateOptions,
) (*GenerateResult, error) {
	logger.Debug("Starting assignment generation",
		zap.Bool("dry_run", opts.DryRun),
		zap.Strings("weeks", opts.Weeks))

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	weeks := opts.Weeks
	if len(weeks) == 0 {
		var err error
		weeks, err = upcomingWeekIDs(now, cfg.GenerationWeeks)
		if err != nil {
			return nil, err
		}
	}

	publishers, err := store.LoadPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}
	logger.Debug("Loaded publishers", zap.Int("count", len(publishers)))

	// The session ledger needs every part with an assignee, not just the
	// target weeks, so fresh assignments in neighboring weeks still count
	// toward fairness. Load from a year back.
	ledgerFrom := mondayOf(now.AddDate(0, 0, -7*cfg.Engine.MaxLookbackWeeks)).Format(weekIDLayout)
	parts, err := store.GetPartsFromWeek(ctx, ledgerFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to load parts: %w", err)
	}
	logger.Debug("Loaded parts", zap.Int("count", len(parts)))

	imported, err := store.LoadHistoryRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history records: %w", err)
	}
	logger.Debug("Loaded history records", zap.Int("count", len(imported)))

	// Fill in meeting dates for parts that came without one.
	for i := range parts {
		if parts[i].Date == "" {
			date, err := meetingDate(parts[i].WeekID, cfg.Engine.MeetingWeekday)
			if err != nil {
				return nil, err
			}
			parts[i].Date = date
		}
	}

	ledger := history.NewLedger(imported, parts)
	gen := generator.New(rankingConfig(cfg.Engine))

	plan, err := gen.Generate(ctx, parts, activePublishers(publishers), ledger, generator.Options{
		Weeks:  weeks,
		DryRun: opts.DryRun,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	result := &GenerateResult{
		Success:  plan.Success,
		Message:  plan.Message,
		DryRun:   opts.DryRun,
		Weeks:    plan.Weeks,
		Assigned: plan.Assigned,
		Skipped:  plan.Skipped,
	}

	for _, skip := range plan.Skipped {
		logger.Info("Part skipped",
			zap.String("part", string(skip.Part.Type)),
			zap.String("week", skip.Part.WeekID),
			zap.String("reason", skip.Reason))
	}

	if opts.DryRun || !plan.Success {
		logger.Info("Generation preview complete",
			zap.Int("assigned", len(plan.Assigned)),
			zap.Int("skipped", len(plan.Skipped)))
		return result, nil
	}

	description := fmt.Sprintf("generation run over %d weeks at %s",
		len(plan.Weeks), now.Format(time.RFC3339))
	committed, commitErrs := gen.Commit(ctx, store, session.Undo(), plan, description)
	result.Committed = committed
	result.Errors = commitErrs

	if len(commitErrs) > 0 {
		// Already-committed parts stay committed; the undo snapshot still
		// covers everything captured.
		logger.Warn("Some parts failed to commit",
			zap.Int("committed", committed),
			zap.Int("failed", len(commitErrs)))
		result.Message = fmt.Sprintf("%s; %d of %d commits failed",
			plan.Message, len(commitErrs), len(plan.Assigned))
	} else {
		logger.Info("Generation committed",
			zap.Int("assigned", committed),
			zap.Int("skipped", len(plan.Skipped)))
	}

	return result, nil
}
