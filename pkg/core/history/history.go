// Package history builds per-publisher participation profiles from the
// merged participation ledger.
package history

import (
	"sort"
	"time"

	"github.com/tcardoso/designa/pkg/core/model"
)

// NeverParticipated is the sentinel DaysSinceLast value for a publisher with
// no record in scope. It sorts as the highest priority, never as zero.
const NeverParticipated = -1

// Ledger is the merged, append-only view of participations used for fairness
// scoring: the long-term imported history plus records derived from currently
// assigned parts, so fresh assignments immediately affect ranking.
type Ledger struct {
	records []model.HistoryRecord
}

// NewLedger builds a ledger from imported records and the parts of the active
// planning window. Any part with a resolved publisher contributes a
// session-derived record regardless of status, matching how the engine is
// expected to treat proposed and confirmed assignments alike.
func NewLedger(imported []model.HistoryRecord, sessionParts []model.Part) *Ledger {
	records := make([]model.HistoryRecord, 0, len(imported)+len(sessionParts))
	records = append(records, imported...)

	for _, part := range sessionParts {
		if part.ResolvedPublisherName == "" || part.Status == model.StatusCancelled {
			continue
		}
		records = append(records, model.HistoryRecord{
			ID:                    part.ID,
			WeekID:                part.WeekID,
			Date:                  part.Date,
			Section:               part.Section,
			Type:                  part.Type,
			Role:                  part.Role,
			ResolvedPublisherName: part.ResolvedPublisherName,
			Provenance:            model.ProvenanceSession,
		})
	}

	// Most recent first. Dates are YYYY-MM-DD so string order is
	// chronological; ties fall back to record id for a stable order.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ID < records[j].ID
	})

	return &Ledger{records: records}
}

// Records returns the merged records, most recent first.
func (l *Ledger) Records() []model.HistoryRecord {
	return l.records
}

// Scope restricts which ledger records count toward a profile.
type Scope struct {
	// Type limits records to an exact part type. Zero value matches all.
	Type model.PartType
	// Category limits records to a distribution category. Zero value
	// matches all. When both Type and Category are set, Type wins.
	Category model.Category
	// Role limits records to a role. Zero value matches all.
	Role model.Role
}

func (s Scope) matches(r *model.HistoryRecord) bool {
	if s.Type != model.PartTypeUnknown {
		return r.Type == s.Type && (s.Role == "" || r.Role == s.Role)
	}
	if s.Category != "" && model.CategoryOf(r.Type, r.Role) != s.Category {
		return false
	}
	if s.Role != "" && r.Role != s.Role {
		return false
	}
	return true
}

// Profile is a per-publisher participation summary.
type Profile struct {
	// Count is the number of records in scope.
	Count int
	// LastDate is the most recent in-scope date, empty when Count is zero.
	LastDate string
	// DaysSinceLast is computed from LastDate to now; NeverParticipated
	// when there is no record in scope.
	DaysSinceLast int
	// CountsByCategory buckets all of the publisher's records, independent
	// of the scope, for distribution reporting.
	CountsByCategory map[model.Category]int
}

// Never reports whether the publisher has no participation in scope.
func (p Profile) Never() bool {
	return p.Count == 0
}

// BuildProfile aggregates the ledger for one publisher. Name matching honors
// both the resolved name and the raw imported name.
func (l *Ledger) BuildProfile(p *model.Publisher, scope Scope, now time.Time) Profile {
	profile := Profile{
		DaysSinceLast:    NeverParticipated,
		CountsByCategory: make(map[model.Category]int),
	}

	for i := range l.records {
		r := &l.records[i]
		if !p.MatchesName(r.ResolvedPublisherName) && !p.MatchesName(r.RawPublisherName) {
			continue
		}

		profile.CountsByCategory[model.CategoryOf(r.Type, r.Role)]++

		if !scope.matches(r) {
			continue
		}
		profile.Count++
		if profile.LastDate == "" {
			// Records are sorted most recent first.
			profile.LastDate = r.Date
		}
	}

	if profile.LastDate != "" {
		if last, err := time.Parse("2006-01-02", profile.LastDate); err == nil {
			profile.DaysSinceLast = int(now.Sub(last).Hours() / 24)
			if profile.DaysSinceLast < 0 {
				profile.DaysSinceLast = 0
			}
		}
	}

	return profile
}

// CooldownApplies reports whether a part type participates in cooldown
// blocking at all. Prayers, local needs and songs neither start a cooldown
// nor honor one when being filled.
func CooldownApplies(t model.PartType) bool {
	switch t {
	case model.PartOpeningPrayer, model.PartClosingPrayer, model.PartLocalNeeds, model.PartSong:
		return false
	}
	return true
}

// InCooldown reports whether the publisher served recently enough to be
// skipped by the rotation. A primary participation blocks for primaryWeeks;
// a helper participation blocks for the shorter helperWeeks. A zero window
// disables the corresponding block.
func (l *Ledger) InCooldown(p *model.Publisher, now time.Time, primaryWeeks, helperWeeks int) bool {
	for i := range l.records {
		r := &l.records[i]
		if !p.MatchesName(r.ResolvedPublisherName) && !p.MatchesName(r.RawPublisherName) {
			continue
		}
		if !CooldownApplies(r.Type) {
			continue
		}
		last, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		days := int(now.Sub(last).Hours() / 24)
		if days < 0 {
			days = 0
		}
		window := primaryWeeks
		if r.Role == model.RoleHelper {
			window = helperWeeks
		}
		if window > 0 && days/7 < window {
			return true
		}
	}
	return false
}

// CountSince counts the publisher's in-scope participations on or after the
// given date.
func (l *Ledger) CountSince(p *model.Publisher, scope Scope, since string) int {
	count := 0
	for i := range l.records {
		r := &l.records[i]
		if r.Date < since {
			continue
		}
		if !p.MatchesName(r.ResolvedPublisherName) && !p.MatchesName(r.RawPublisherName) {
			continue
		}
		if scope.matches(r) {
			count++
		}
	}
	return count
}
