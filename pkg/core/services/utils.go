package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tcardoso/designa/pkg/core/model"
)

const weekIDLayout = "2006-01-02"

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// upcomingWeekIDs expands the weekly Monday series starting with the current
// week, yielding count week ids.
func upcomingWeekIDs(from time.Time, count int) ([]string, error) {
	start := mondayOf(from)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: start,
		Count:   count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build week recurrence: %w", err)
	}

	weekIDs := make([]string, 0, count)
	for _, d := range rule.All() {
		weekIDs = append(weekIDs, d.Format(weekIDLayout))
	}
	return weekIDs, nil
}

// meetingDate computes the meeting date for a week from its Monday and the
// configured meeting weekday (0=Sunday..6=Saturday).
func meetingDate(weekID string, meetingWeekday int) (string, error) {
	monday, err := time.Parse(weekIDLayout, weekID)
	if err != nil {
		return "", fmt.Errorf("invalid week id %q: %w", weekID, err)
	}
	offset := (meetingWeekday - int(monday.Weekday()) + 7) % 7
	return monday.AddDate(0, 0, offset).Format(weekIDLayout), nil
}

// activePublishers narrows a pool to serving publishers, returning pointers
// for the eligibility and ranking layers.
func activePublishers(publishers []model.Publisher) []*model.Publisher {
	active := make([]*model.Publisher, 0, len(publishers))
	for i := range publishers {
		if publishers[i].IsServing {
			active = append(active, &publishers[i])
		}
	}
	return active
}

// publisherPointers converts a publisher slice without filtering.
func publisherPointers(publishers []model.Publisher) []*model.Publisher {
	out := make([]*model.Publisher, len(publishers))
	for i := range publishers {
		out[i] = &publishers[i]
	}
	return out
}
