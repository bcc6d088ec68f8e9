// Package eligibility decides whether a publisher may be assigned to a part.
// Checks are pure field inspections with no side effects, cheap enough to be
// called once per (publisher, part) pair per ranking request.
package eligibility

import (
	"fmt"

	"github.com/tcardoso/designa/pkg/core/model"
)

// Request describes the part slot being checked.
type Request struct {
	Type    model.PartType
	Role    model.Role
	Section model.Section

	// MeetingDate is the meeting date in YYYY-MM-DD form. Empty skips the
	// availability gate.
	MeetingDate string

	// PastWeek disables the availability gate: historical assignments are
	// factual and must not be judged against current availability.
	PastWeek bool

	// PrimaryGender is the gender of the already-chosen primary when
	// checking a helper slot. A helper must match the primary's gender;
	// with no primary resolved the helper slot requires manual selection.
	PrimaryGender model.Gender
}

// Result is the verdict for one (publisher, request) pair.
type Result struct {
	Eligible bool
	Reason   string
}

func ok() Result {
	return Result{Eligible: true}
}

func blocked(reason string) Result {
	return Result{Eligible: false, Reason: reason}
}

// Check applies every eligibility rule. All rules must pass.
func Check(p *model.Publisher, req Request) Result {
	// Global gates, in the order the original rules are numbered.
	if !p.IsServing {
		return blocked("publisher is not serving")
	}
	if p.IsNotQualified {
		return blocked("publisher is marked not qualified")
	}
	if p.RequestedNoParticipation {
		return blocked("publisher requested no participation")
	}

	if req.MeetingDate != "" && !req.PastWeek && !p.Availability.AvailableOn(req.MeetingDate) {
		return blocked(fmt.Sprintf("publisher unavailable on %s", req.MeetingDate))
	}

	if p.IsHelperOnly && req.Role != model.RoleHelper {
		return blocked("publisher is restricted to helper roles")
	}

	if r := checkSectionPrivilege(p, req.Section); !r.Eligible {
		return r
	}

	if req.Role == model.RoleHelper {
		return checkHelper(p, req)
	}

	return checkPartType(p, req)
}

// checkSectionPrivilege enforces the per-section participation flags.
func checkSectionPrivilege(p *model.Publisher, section model.Section) Result {
	switch section {
	case model.SectionTreasures:
		if !p.SectionPrivileges.Treasures {
			return blocked("publisher may not participate in the treasures section")
		}
	case model.SectionMinistry:
		if !p.SectionPrivileges.Ministry {
			return blocked("publisher may not participate in the ministry section")
		}
	case model.SectionLiving:
		if !p.SectionPrivileges.Living {
			return blocked("publisher may not participate in the living section")
		}
	}
	return ok()
}

// checkHelper enforces the demonstration helper rules. A helper must be the
// same gender as the primary; an unresolved primary blocks auto-assignment.
func checkHelper(p *model.Publisher, req Request) Result {
	if !req.Type.IsDemonstration() {
		return blocked("helper roles exist only on demonstrations")
	}
	if req.PrimaryGender == "" {
		return blocked("primary not resolved; helper requires manual selection")
	}
	if p.Gender != req.PrimaryGender {
		return blocked("helper must match the primary's gender")
	}
	return ok()
}

// checkPartType enforces the per-type gates for primary roles.
func checkPartType(p *model.Publisher, req Request) Result {
	switch req.Type {
	case model.PartChairman:
		if !p.Privileges.CanPreside {
			return blocked("publisher may not preside")
		}
		return ok()

	case model.PartSong:
		return blocked("songs are not assigned")

	case model.PartOpeningPrayer, model.PartClosingPrayer:
		if !p.IsBaptized {
			return blocked("prayer requires a baptized publisher")
		}
		if p.Gender != model.GenderBrother {
			return blocked("prayer requires a brother")
		}
		if !p.Privileges.CanPray {
			return blocked("publisher may not pray")
		}
		// The opening prayer is offered by the chairman or someone who
		// could preside.
		if req.Type == model.PartOpeningPrayer && !p.Privileges.CanPreside {
			return blocked("opening prayer requires the preside privilege")
		}
		return ok()

	case model.PartTreasuresTalk, model.PartSpiritualGems, model.PartLivingTalk:
		if p.Gender != model.GenderBrother {
			return blocked("teaching talks require a brother")
		}
		if !p.Privileges.CanGiveTalks {
			return blocked("publisher may not give talks")
		}
		if !p.Condition.IsElderOrServant() {
			return blocked("teaching talks require an elder or ministerial servant")
		}
		return ok()

	case model.PartLocalNeeds:
		if p.Condition != model.ConditionElder {
			return blocked("local needs requires an elder")
		}
		if !p.Privileges.CanGiveTalks {
			return blocked("publisher may not give talks")
		}
		return ok()

	case model.PartCBSConductor:
		if p.Condition != model.ConditionElder {
			return blocked("conducting the congregation Bible study requires an elder")
		}
		if !p.Privileges.CanConductCBS {
			return blocked("publisher may not conduct the congregation Bible study")
		}
		return ok()

	case model.PartCBSReader:
		if p.Gender != model.GenderBrother {
			return blocked("reading the congregation Bible study requires a brother")
		}
		if !p.Privileges.CanReadCBS {
			return blocked("publisher may not read the congregation Bible study")
		}
		return ok()

	case model.PartCounselPraise:
		if !p.Condition.IsElderOrServant() {
			return blocked("counsel requires an elder or ministerial servant")
		}
		return ok()

	case model.PartBibleReading, model.PartStudentTalk:
		if p.Gender != model.GenderBrother {
			return blocked("this student part requires a brother")
		}
		return checkStudentPart(p)

	case model.PartStartingDemo, model.PartFollowingDemo,
		model.PartDiscipleDemo, model.PartBeliefsDemo:
		// Demonstrations are open to sisters.
		return checkStudentPart(p)

	default:
		return blocked(fmt.Sprintf("unknown part type %q", req.Type))
	}
}

// checkStudentPart covers the shared student-part rules. Unbaptized
// publishers may participate.
func checkStudentPart(p *model.Publisher) Result {
	if p.IsHelperOnly {
		return blocked("publisher is restricted to helper roles")
	}
	if p.AgeGroup == model.AgeGroupChild {
		return blocked("children are not assigned student parts")
	}
	return ok()
}

// Filter returns the publishers passing every rule for the request, in the
// input order.
func Filter(publishers []*model.Publisher, req Request) []*model.Publisher {
	var eligible []*model.Publisher
	for _, p := range publishers {
		if Check(p, req).Eligible {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// Stats summarizes eligibility counts over a publisher pool, used for the
// list-publishers report.
type Stats struct {
	Total         int
	Serving       int
	Eligible      int
	CanPreside    int
	CanPray       int
	CanGiveTalks  int
	CanConductCBS int
	CanReadCBS    int
	EldersAndMS   int
	Brothers      int
	Sisters       int
}

// Summarize computes eligibility statistics for a pool.
func Summarize(publishers []*model.Publisher) Stats {
	var s Stats
	s.Total = len(publishers)
	for _, p := range publishers {
		if !p.IsServing {
			continue
		}
		s.Serving++
		if p.IsNotQualified || p.RequestedNoParticipation {
			continue
		}
		s.Eligible++
		if p.Privileges.CanPreside {
			s.CanPreside++
		}
		if p.Privileges.CanPray {
			s.CanPray++
		}
		if p.Privileges.CanGiveTalks {
			s.CanGiveTalks++
		}
		if p.Privileges.CanConductCBS {
			s.CanConductCBS++
		}
		if p.Privileges.CanReadCBS {
			s.CanReadCBS++
		}
		if p.Condition.IsElderOrServant() {
			s.EldersAndMS++
		}
		if p.Gender == model.GenderBrother {
			s.Brothers++
		} else {
			s.Sisters++
		}
	}
	return s
}
