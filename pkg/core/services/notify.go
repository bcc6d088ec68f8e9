package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/model"
)

// Notifier sends a single message. The Gmail client satisfies this.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

// NotifyStore defines the database operations needed for confirmation
// dispatch.
type NotifyStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPartsByWeekID(ctx context.Context, weekID string) ([]model.Part, error)
}

// NotifyResult reports who was emailed and who could not be reached.
type NotifyResult struct {
	Sent    int
	Skipped []string
	Errors  []string
}

// SendConfirmations emails each publisher with a proposed or confirmed part
// in the given weeks a summary of their assignments. Publishers without an
// email address are reported, not treated as failures.
func SendConfirmations(
	ctx context.Context,
	store NotifyStore,
	notifier Notifier,
	cfg *config.Config,
	logger *zap.Logger,
	weeks []string,
) (*NotifyResult, error) {
	publishers, err := store.LoadPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}

	byID := make(map[string]*model.Publisher, len(publishers))
	for i := range publishers {
		byID[publishers[i].ID] = &publishers[i]
	}

	// Group assignments per publisher across all requested weeks so each
	// person gets one email.
	lines := make(map[string][]string)
	for _, weekID := range weeks {
		parts, err := store.GetPartsByWeekID(ctx, weekID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parts for week %s: %w", weekID, err)
		}
		for _, part := range parts {
			if part.ResolvedPublisherID == "" {
				continue
			}
			if part.Status != model.StatusProposed && part.Status != model.StatusConfirmed {
				continue
			}
			line := fmt.Sprintf("%s: %s", part.Date, part.Title)
			if part.Title == "" {
				line = fmt.Sprintf("%s: %s", part.Date, part.Type)
			}
			if part.Role == model.RoleHelper {
				line += " (helper)"
			}
			lines[part.ResolvedPublisherID] = append(lines[part.ResolvedPublisherID], line)
		}
	}

	result := &NotifyResult{}

	ids := make([]string, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pub, ok := byID[id]
		if !ok {
			result.Skipped = append(result.Skipped, fmt.Sprintf("unknown publisher id %s", id))
			continue
		}
		if pub.Email == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s has no email address", pub.Name))
			continue
		}

		subject := fmt.Sprintf("%s: your upcoming meeting assignments", cfg.CongregationName)
		body := fmt.Sprintf("Hello %s,\n\nYou have been assigned the following:\n\n", pub.Name)
		for _, line := range lines[id] {
			body += "  - " + line + "\n"
		}
		body += "\nPlease reply if you are unable to take an assignment.\n"

		if err := notifier.SendEmail(pub.Email, subject, body); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", pub.Name, err))
			continue
		}
		result.Sent++
		logger.Debug("Confirmation sent",
			zap.String("publisher", pub.Name),
			zap.Int("assignments", len(lines[id])))
	}

	logger.Info("Confirmation dispatch complete",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}
