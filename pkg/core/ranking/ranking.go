// Package ranking orders eligible candidates by fairness: whoever has gone
// longest without serving in a part's fairness domain ranks first. The
// engine is pure; callers pass the ledger, the tuning config, and the
// reference time explicitly.
package ranking

import (
	"fmt"
	"sort"
	"time"

	"github.com/tcardoso/designa/pkg/core/history"
	"github.com/tcardoso/designa/pkg/core/model"
)

// Config is the ranking tuning, passed by value on every call.
type Config struct {
	// RecentWindowWeeks is the lookback window for the recent-participation
	// count reported in explanations.
	RecentWindowWeeks int

	// MaxLookbackWeeks caps DaysSinceLast so ancient records do not inflate
	// the explanation output.
	MaxLookbackWeeks int

	// ExactHistoryThreshold is the number of exact part-type records below
	// which the engine falls back to category-level history. With the
	// default of 1, the fallback triggers only for publishers with zero
	// exact-type records.
	ExactHistoryThreshold int

	// CooldownWeeks is the hard blocking window after a primary
	// participation: the generator skips publishers who served more
	// recently. Zero disables the block.
	CooldownWeeks int

	// HelperCooldownWeeks is the shorter blocking window started by a
	// helper participation.
	HelperCooldownWeeks int
}

// DefaultConfig returns the tuning used when the caller has none.
func DefaultConfig() Config {
	return Config{
		RecentWindowWeeks:     12,
		MaxLookbackWeeks:      52,
		ExactHistoryThreshold: 1,
		CooldownWeeks:         3,
		HelperCooldownWeeks:   2,
	}
}

// Candidate is one ranked entry: the publisher plus the score components
// that produced its position. Candidates are ephemeral, recomputed per
// ranking request.
type Candidate struct {
	Publisher *model.Publisher

	// Profile is the participation profile in the part's fairness domain.
	Profile history.Profile

	// RecentCount is the number of participations, any type, within the
	// recent window.
	RecentCount int

	// CategoryFallback is true when the publisher had too few exact-type
	// records and the profile was built from category-level history.
	CategoryFallback bool

	partType model.PartType
}

// Never reports whether the candidate has no participation in the fairness
// domain at all, even after the category fallback.
func (c Candidate) Never() bool {
	return c.Profile.Never()
}

// Explain renders the human-readable reason for the candidate's position,
// used for audit output and agent-facing explanations.
func (c Candidate) Explain() string {
	domain := string(c.partType)
	if c.CategoryFallback {
		domain = fmt.Sprintf("%s (category fallback)", domain)
	}
	if c.Never() {
		return fmt.Sprintf("%s: never served in %s", c.Publisher.Name, domain)
	}
	return fmt.Sprintf("%s: last served %d days ago in %s on %s, %d recent participations",
		c.Publisher.Name, c.Profile.DaysSinceLast, domain, c.Profile.LastDate, c.RecentCount)
}

// Rank produces the fairness ordering for the eligible candidates.
//
// Ordering:
//  1. Never-participated candidates first (highest priority).
//  2. Then by last participation date ascending: served longest ago first.
//  3. Ties broken by total lifetime participation count ascending, then by
//     name ascending. The tie-break is deterministic; insertion order never
//     matters.
//
// An empty eligible set yields an empty ranking; the caller must treat
// "no eligible candidate" as a first-class outcome.
func Rank(
	eligible []*model.Publisher,
	partType model.PartType,
	role model.Role,
	ledger *history.Ledger,
	cfg Config,
	now time.Time,
) []Candidate {
	if len(eligible) == 0 {
		return nil
	}

	recentSince := now.AddDate(0, 0, -7*cfg.RecentWindowWeeks).Format("2006-01-02")
	maxDays := cfg.MaxLookbackWeeks * 7

	candidates := make([]Candidate, 0, len(eligible))
	for _, p := range eligible {
		c := Candidate{Publisher: p, partType: partType}

		exact := ledger.BuildProfile(p, history.Scope{Type: partType, Role: role}, now)
		if exact.Count >= cfg.ExactHistoryThreshold {
			c.Profile = exact
		} else {
			// No meaningful exact-type history: score against the part's
			// category so someone who has done similar parts is not
			// artificially favored over true newcomers.
			category := model.CategoryOf(partType, role)
			fallback := ledger.BuildProfile(p, history.Scope{Category: category}, now)
			if fallback.Count > exact.Count {
				c.Profile = fallback
				c.CategoryFallback = true
			} else {
				c.Profile = exact
			}
		}

		if c.Profile.DaysSinceLast > maxDays {
			c.Profile.DaysSinceLast = maxDays
		}

		c.RecentCount = ledger.CountSince(p, history.Scope{}, recentSince)
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})

	return candidates
}

// less implements the documented ordering.
func less(a, b Candidate) bool {
	if a.Never() != b.Never() {
		return a.Never()
	}
	if !a.Never() && a.Profile.LastDate != b.Profile.LastDate {
		return a.Profile.LastDate < b.Profile.LastDate
	}
	if ta, tb := lifetimeCount(a), lifetimeCount(b); ta != tb {
		return ta < tb
	}
	return a.Publisher.Name < b.Publisher.Name
}

func lifetimeCount(c Candidate) int {
	total := 0
	for _, n := range c.Profile.CountsByCategory {
		total += n
	}
	return total
}
