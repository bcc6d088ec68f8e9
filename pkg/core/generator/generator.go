// Package generator orchestrates assignment runs: it filters pools through
// the eligibility checker, ranks them, applies helper pairing, and commits
// results through a capture-then-mutate discipline so every run can be
// undone as a unit.
package generator

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/tcardoso/designa/pkg/core/eligibility"
	"github.com/tcardoso/designa/pkg/core/history"
	"github.com/tcardoso/designa/pkg/core/model"
	"github.com/tcardoso/designa/pkg/core/ranking"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Options controls one generation run.
type Options struct {
	// Weeks restricts the run to the given week ids. Empty means every week
	// present in the input parts.
	Weeks []string

	// DryRun computes the full proposal set without persisting anything.
	DryRun bool

	// Now is the reference time for availability and fairness. Zero means
	// time.Now().
	Now time.Time
}

// Assignment is one resolved proposal.
type Assignment struct {
	Part      model.Part
	Publisher *model.Publisher
	// Reason is the ranking explanation that justified the pick.
	Reason string
}

// SkippedPart records a part left unfilled and why. Skips are expected
// steady state, not errors.
type SkippedPart struct {
	Part   model.Part
	Reason string
}

// Result is the structured outcome of a run.
type Result struct {
	Success  bool
	Message  string
	DryRun   bool
	Weeks    []string
	Assigned []Assignment
	Skipped  []SkippedPart
	// Errors lists per-part commit failures. Committed parts stay
	// committed; the undo snapshot still covers everything captured.
	Errors []string
}

// Generator plans and commits assignment runs. The configuration is held per
// instance; the in-run exclusion state is scoped to each Generate call, so
// one Generator may serve sequential runs without leakage.
type Generator struct {
	rankCfg ranking.Config
}

// New creates a Generator with the given ranking configuration.
func New(rankCfg ranking.Config) *Generator {
	return &Generator{rankCfg: rankCfg}
}

// Generate computes a proposal set for every unfilled part in the target
// weeks. It never mutates anything; Commit applies a plan.
//
// Parts with no eligible candidate are reported in Skipped and do not abort
// the run. The context is checked between parts so a long multi-week run can
// be aborted; the partial plan built so far is returned with the error.
func (g *Generator) Generate(
	ctx context.Context,
	parts []model.Part,
	publishers []*model.Publisher,
	ledger *history.Ledger,
	opts Options,
) (*Result, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if err := validateInputs(parts, opts); err != nil {
		return nil, err
	}

	result := &Result{DryRun: opts.DryRun}

	pending := selectPending(parts, opts.Weeks)
	if len(pending) == 0 {
		result.Success = false
		result.Message = "no parts need assignment in the selected weeks"
		return result, nil
	}

	byWeek := groupByWeek(pending)
	weekIDs := sortedWeekIDs(byWeek)
	result.Weeks = weekIDs

	currentMonday := mondayOf(now).Format("2006-01-02")

	for _, weekID := range weekIDs {
		if err := ctx.Err(); err != nil {
			result.Message = fmt.Sprintf("aborted before week %s", weekID)
			return result, err
		}
		if err := g.fillWeek(ctx, byWeek[weekID], parts, publishers, ledger, currentMonday, now, result); err != nil {
			result.Message = fmt.Sprintf("aborted during week %s", weekID)
			return result, err
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d parts filled, %d skipped across %d weeks",
		len(result.Assigned), len(result.Skipped), len(weekIDs))
	return result, nil
}

// run holds the per-call exclusion state. It must never outlive a single
// Generate call.
type run struct {
	// assignedInWeek tracks publishers already given a part this week in
	// this run, so they are not double-booked before the pool is exhausted.
	assignedInWeek map[string]bool
	// assignedBySeq maps seq -> publisher names used on that part number,
	// so a primary and its helper are always different publishers even
	// after a pool reset.
	assignedBySeq map[int]map[string]bool
	// chosen maps part id -> publisher for helper gender pairing.
	chosen map[string]*model.Publisher
}

func (g *Generator) fillWeek(
	ctx context.Context,
	weekParts []model.Part,
	allParts []model.Part,
	publishers []*model.Publisher,
	ledger *history.Ledger,
	currentMonday string,
	now time.Time,
	result *Result,
) error {
	state := &run{
		assignedInWeek: make(map[string]bool),
		assignedBySeq:  make(map[int]map[string]bool),
		chosen:         make(map[string]*model.Publisher),
	}

	ordered := orderForWeek(weekParts)

	// The chairman is chosen first: later parts must not consume the small
	// presiding pool, and the opening prayer reuses the chairman.
	var chairman *model.Publisher
	for _, part := range ordered {
		if part.Type == model.PartChairman && part.Role == model.RolePrimary {
			chairman = g.fillPart(part, allParts, publishers, ledger, state, currentMonday, now, result)
			break
		}
	}

	for _, part := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		if part.Type == model.PartChairman && part.Role == model.RolePrimary {
			continue // handled above
		}
		if _, done := state.chosen[part.ID]; done {
			continue
		}

		// The chairman offers the opening prayer when eligible.
		if part.Type == model.PartOpeningPrayer && chairman != nil {
			req := requestFor(part, currentMonday, "")
			if eligibility.Check(chairman, req).Eligible {
				record(part, chairman, "opening prayer goes to the week's chairman", state, result)
				continue
			}
		}

		g.fillPart(part, allParts, publishers, ledger, state, currentMonday, now, result)
	}
	return nil
}

// fillPart runs the eligibility filter and ranking for one part and records
// the outcome. Returns the chosen publisher, or nil when the part was skipped.
func (g *Generator) fillPart(
	part model.Part,
	allParts []model.Part,
	publishers []*model.Publisher,
	ledger *history.Ledger,
	state *run,
	currentMonday string,
	now time.Time,
	result *Result,
) *model.Publisher {
	primaryGender := model.Gender("")
	if part.Role == model.RoleHelper {
		primaryGender = g.primaryGender(part, allParts, publishers, state)
		if primaryGender == "" {
			result.Skipped = append(result.Skipped, SkippedPart{
				Part:   part,
				Reason: "primary not resolved; helper requires manual selection",
			})
			return nil
		}
	}

	req := requestFor(part, currentMonday, primaryGender)
	eligible := eligibility.Filter(publishers, req)
	if len(eligible) == 0 {
		result.Skipped = append(result.Skipped, SkippedPart{
			Part:   part,
			Reason: fmt.Sprintf("no eligible candidate for %s", part.Type),
		})
		return nil
	}

	// Cooldown is a hard block, not a penalty: whoever served recently is
	// skipped by the rotation. Prayers and local needs are filled without
	// honoring the block.
	if history.CooldownApplies(part.Type) {
		eligible = g.withoutCooldown(eligible, ledger, now)
		if len(eligible) == 0 {
			result.Skipped = append(result.Skipped, SkippedPart{
				Part:   part,
				Reason: "all eligible candidates are in cooldown",
			})
			return nil
		}
	}

	pool := excludeNames(eligible, state.assignedInWeek)
	if len(pool) == 0 {
		// Every eligible publisher already has a part this week; start a
		// new round rather than leaving the part unfilled, but never reuse
		// anyone already on this part number.
		state.assignedInWeek = make(map[string]bool)
		pool = excludeNames(eligible, state.assignedBySeq[part.Seq])
	} else {
		pool = excludeNames(pool, state.assignedBySeq[part.Seq])
	}
	if len(pool) == 0 {
		result.Skipped = append(result.Skipped, SkippedPart{
			Part:   part,
			Reason: "all eligible candidates already serve on this part",
		})
		return nil
	}

	candidates := ranking.Rank(pool, part.Type, part.Role, ledger, g.rankCfg, now)
	best := candidates[0]
	record(part, best.Publisher, best.Explain(), state, result)
	return best.Publisher
}

// primaryGender resolves the gender of the helper's primary, preferring the
// publisher chosen in this run, then the part's persisted assignee.
func (g *Generator) primaryGender(
	helper model.Part,
	allParts []model.Part,
	publishers []*model.Publisher,
	state *run,
) model.Gender {
	for i := range allParts {
		p := &allParts[i]
		if p.WeekID != helper.WeekID || p.Seq != helper.Seq || p.Role != model.RolePrimary {
			continue
		}
		if chosen, ok := state.chosen[p.ID]; ok {
			return chosen.Gender
		}
		if p.ResolvedPublisherName != "" {
			for _, pub := range publishers {
				if pub.MatchesName(p.ResolvedPublisherName) {
					// A persisted primary was not recorded by this run, so
					// mark it here to keep the helper a different publisher.
					if state.assignedBySeq[helper.Seq] == nil {
						state.assignedBySeq[helper.Seq] = make(map[string]bool)
					}
					state.assignedBySeq[helper.Seq][pub.Name] = true
					return pub.Gender
				}
			}
		}
	}
	return ""
}

func (g *Generator) withoutCooldown(pool []*model.Publisher, ledger *history.Ledger, now time.Time) []*model.Publisher {
	if g.rankCfg.CooldownWeeks <= 0 && g.rankCfg.HelperCooldownWeeks <= 0 {
		return pool
	}
	var out []*model.Publisher
	for _, p := range pool {
		if !ledger.InCooldown(p, now, g.rankCfg.CooldownWeeks, g.rankCfg.HelperCooldownWeeks) {
			out = append(out, p)
		}
	}
	return out
}

func record(part model.Part, pub *model.Publisher, reason string, state *run, result *Result) {
	state.assignedInWeek[pub.Name] = true
	if state.assignedBySeq[part.Seq] == nil {
		state.assignedBySeq[part.Seq] = make(map[string]bool)
	}
	state.assignedBySeq[part.Seq][pub.Name] = true
	state.chosen[part.ID] = pub

	result.Assigned = append(result.Assigned, Assignment{
		Part:      part,
		Publisher: pub,
		Reason:    reason,
	})
}

// PartStore is the persistence surface the commit phase needs.
type PartStore interface {
	UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error
}

// Commit applies a plan: it captures the prior state of every touched part
// into one undo batch, then mutates each part to PROPOSED with its chosen
// publisher. Per-part storage failures are reported in the returned list and
// do not abort the rest; everything captured stays revertible.
func (g *Generator) Commit(
	ctx context.Context,
	store PartStore,
	undo *UndoLedger,
	plan *Result,
	description string,
) (int, []string) {
	if len(plan.Assigned) == 0 {
		return 0, nil
	}

	priors := make([]model.Part, 0, len(plan.Assigned))
	for _, a := range plan.Assigned {
		priors = append(priors, a.Part)
	}
	undo.CaptureBatch(priors, description)

	var errs []string
	committed := 0
	for _, a := range plan.Assigned {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("aborted before part %s: %v", a.Part.ID, err))
			break
		}
		status := model.StatusProposed
		update := model.PartUpdate{
			ResolvedPublisherID:   &a.Publisher.ID,
			ResolvedPublisherName: &a.Publisher.Name,
			Status:                &status,
		}
		if err := store.UpdatePart(ctx, a.Part.ID, update); err != nil {
			errs = append(errs, fmt.Sprintf("part %s (%s): %v", a.Part.ID, a.Part.Type, err))
			continue
		}
		committed++
	}
	return committed, errs
}

// validateInputs rejects malformed identifiers at the orchestration boundary
// rather than coercing them.
func validateInputs(parts []model.Part, opts Options) error {
	for i := range parts {
		p := &parts[i]
		if p.ID == "" {
			return fmt.Errorf("part at index %d has no id", i)
		}
		if !dateRe.MatchString(p.WeekID) {
			return fmt.Errorf("part %s has malformed week id %q", p.ID, p.WeekID)
		}
		if p.Date != "" && !dateRe.MatchString(p.Date) {
			return fmt.Errorf("part %s has malformed date %q", p.ID, p.Date)
		}
	}
	for _, w := range opts.Weeks {
		if !dateRe.MatchString(w) {
			return fmt.Errorf("malformed week id %q", w)
		}
	}
	return nil
}

func selectPending(parts []model.Part, weeks []string) []model.Part {
	weekSet := make(map[string]bool, len(weeks))
	for _, w := range weeks {
		weekSet[w] = true
	}

	var pending []model.Part
	for _, p := range parts {
		if !p.Type.IsAssignable() || !p.Role.IsValid() {
			continue
		}
		if len(weekSet) > 0 && !weekSet[p.WeekID] {
			continue
		}
		if !p.NeedsAssignment() {
			continue
		}
		pending = append(pending, p)
	}
	return pending
}

func groupByWeek(parts []model.Part) map[string][]model.Part {
	byWeek := make(map[string][]model.Part)
	for _, p := range parts {
		byWeek[p.WeekID] = append(byWeek[p.WeekID], p)
	}
	return byWeek
}

func sortedWeekIDs(byWeek map[string][]model.Part) []string {
	ids := make([]string, 0, len(byWeek))
	for id := range byWeek {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// orderForWeek sorts a week's parts into agenda order: by sequence number,
// primaries before their helpers.
func orderForWeek(parts []model.Part) []model.Part {
	ordered := make([]model.Part, len(parts))
	copy(ordered, parts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Seq != ordered[j].Seq {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].Role == model.RolePrimary && ordered[j].Role == model.RoleHelper
	})
	return ordered
}

func requestFor(part model.Part, currentMonday string, primaryGender model.Gender) eligibility.Request {
	return eligibility.Request{
		Type:          part.Type,
		Role:          part.Role,
		Section:       part.Section,
		MeetingDate:   part.Date,
		PastWeek:      part.WeekID < currentMonday,
		PrimaryGender: primaryGender,
	}
}

func excludeNames(pool []*model.Publisher, excluded map[string]bool) []*model.Publisher {
	if len(excluded) == 0 {
		return pool
	}
	var out []*model.Publisher
	for _, p := range pool {
		if !excluded[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
