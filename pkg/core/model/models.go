package model

import "time"

type Gender string

const (
	GenderBrother Gender = "brother"
	GenderSister  Gender = "sister"
)

func (g Gender) IsValid() bool {
	return g == GenderBrother || g == GenderSister
}

// Condition is a publisher's ordination condition.
type Condition string

const (
	ConditionElder              Condition = "Elder"
	ConditionMinisterialServant Condition = "Ministerial servant"
	ConditionPublisher          Condition = "Publisher"
)

func (c Condition) IsValid() bool {
	return c == ConditionElder || c == ConditionMinisterialServant || c == ConditionPublisher
}

// IsElderOrServant reports whether the condition carries teaching responsibility.
func (c Condition) IsElderOrServant() bool {
	return c == ConditionElder || c == ConditionMinisterialServant
}

type AgeGroup string

const (
	AgeGroupAdult AgeGroup = "Adult"
	AgeGroupYouth AgeGroup = "Youth"
	AgeGroupChild AgeGroup = "Child"
)

// Privileges are the assignment privileges a publisher holds.
type Privileges struct {
	CanGiveTalks  bool
	CanConductCBS bool
	CanReadCBS    bool
	CanPray       bool
	CanPreside    bool
}

// SectionPrivileges gate participation per meeting section.
type SectionPrivileges struct {
	Treasures bool
	Ministry  bool
	Living    bool
}

// AvailabilityMode controls how the exception-date lists are interpreted.
type AvailabilityMode string

const (
	// AvailabilityAlways means available by default; ExceptionDates lists
	// the meeting dates the publisher is away.
	AvailabilityAlways AvailabilityMode = "always"
	// AvailabilityNever means unavailable by default; AvailableDates lists
	// the meeting dates the publisher can serve.
	AvailabilityNever AvailabilityMode = "never"
)

// Availability holds a publisher's date availability. All dates are meeting
// dates in YYYY-MM-DD form.
type Availability struct {
	Mode           AvailabilityMode
	ExceptionDates []string
	AvailableDates []string
}

// AvailableOn reports whether the publisher can serve on the given meeting date.
func (a Availability) AvailableOn(date string) bool {
	if a.Mode == AvailabilityNever {
		for _, d := range a.AvailableDates {
			if d == date {
				return true
			}
		}
		return false
	}
	for _, d := range a.ExceptionDates {
		if d == date {
			return false
		}
	}
	return true
}

// Publisher represents a congregation member eligible to serve on meeting parts.
// Publishers are never deleted, only deactivated via IsServing.
type Publisher struct {
	ID        string
	Name      string
	Aliases   []string
	Gender    Gender
	Condition Condition
	AgeGroup  AgeGroup
	Phone     string
	Email     string

	IsBaptized bool
	IsServing  bool

	// IsHelperOnly restricts the publisher to helper roles on demonstrations.
	IsHelperOnly             bool
	IsNotQualified           bool
	RequestedNoParticipation bool

	Privileges        Privileges
	SectionPrivileges SectionPrivileges
	Availability      Availability

	// ParentIDs link minors to their approved pairing partners.
	ParentIDs []string

	CreatedAt time.Time
}

// MatchesName reports whether the given free-text name refers to this
// publisher, either by the canonical name or a known alias.
func (p *Publisher) MatchesName(name string) bool {
	if name == "" {
		return false
	}
	if p.Name == name {
		return true
	}
	for _, alias := range p.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// Role is the function a publisher fills within a part.
type Role string

const (
	RolePrimary Role = "Primary"
	RoleHelper  Role = "Helper"
)

func (r Role) IsValid() bool {
	return r == RolePrimary || r == RoleHelper
}

// PartStatus is the lifecycle state of a part's assignment.
type PartStatus string

const (
	StatusPending   PartStatus = "PENDING"
	StatusProposed  PartStatus = "PROPOSED"
	StatusConfirmed PartStatus = "CONFIRMED"
	StatusCompleted PartStatus = "COMPLETED"
	StatusCancelled PartStatus = "CANCELLED"
)

// IsFinal reports whether the status excludes the part from further
// automatic assignment.
func (s PartStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Part is one slot in a week's meeting agenda.
type Part struct {
	ID string

	// WeekID is the Monday of the meeting week in YYYY-MM-DD form.
	WeekID string
	// Date is the meeting date itself in YYYY-MM-DD form.
	Date string
	// Seq orders parts within the week; a helper shares its primary's Seq.
	Seq int

	Section  Section
	Type     PartType
	Role     Role
	Title    string
	Duration int
	Room     string

	ResolvedPublisherID   string
	ResolvedPublisherName string
	RawPublisherName      string

	Status PartStatus
}

// NeedsAssignment reports whether the generator should try to fill this part.
func (p *Part) NeedsAssignment() bool {
	if p.Status.IsFinal() {
		return false
	}
	return p.Status == StatusPending || p.ResolvedPublisherName == ""
}

// PartUpdate is a partial update of a part's mutable assignment fields.
// Nil fields are left untouched by the store.
type PartUpdate struct {
	ResolvedPublisherID   *string
	ResolvedPublisherName *string
	Status                *PartStatus
	Title                 *string
}

// Provenance tags where a history record came from.
type Provenance string

const (
	ProvenanceImported Provenance = "imported"
	ProvenanceSession  Provenance = "session"
)

// HistoryRecord is an immutable ledger entry for a part actually performed.
// Corrections are modeled as new records, never in-place edits, because
// fairness ranking depends on a stable chronological ledger.
type HistoryRecord struct {
	ID string

	WeekID  string
	Date    string
	Section Section
	Type    PartType
	Role    Role

	RawPublisherName      string
	ResolvedPublisherName string

	Provenance    Provenance
	ImportBatchID string

	CreatedAt time.Time
}

// PublisherName returns the best available name for the performer.
func (r *HistoryRecord) PublisherName() string {
	if r.ResolvedPublisherName != "" {
		return r.ResolvedPublisherName
	}
	return r.RawPublisherName
}
