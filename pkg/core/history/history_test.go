package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tcardoso/designa/pkg/core/model"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func record(id, date string, partType model.PartType, role model.Role, name string) model.HistoryRecord {
	return model.HistoryRecord{
		ID:                    id,
		Date:                  date,
		Type:                  partType,
		Role:                  role,
		ResolvedPublisherName: name,
		Provenance:            model.ProvenanceImported,
	}
}

func TestNewLedger_MergesSessionParts(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-07-02", model.PartBibleReading, model.RolePrimary, "Alice"),
	}
	parts := []model.Part{
		{ID: "p1", WeekID: "2026-08-24", Date: "2026-08-27", Type: model.PartStartingDemo,
			Role: model.RolePrimary, ResolvedPublisherName: "Alice", Status: model.StatusProposed},
		{ID: "p2", WeekID: "2026-08-24", Date: "2026-08-27", Type: model.PartFollowingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
		{ID: "p3", WeekID: "2026-08-24", Date: "2026-08-27", Type: model.PartDiscipleDemo,
			Role: model.RolePrimary, ResolvedPublisherName: "Bob", Status: model.StatusCancelled},
	}

	ledger := NewLedger(imported, parts)
	records := ledger.Records()

	// Unassigned and cancelled parts contribute nothing.
	assert.Len(t, records, 2)
	assert.Equal(t, "p1", records[0].ID)
	assert.Equal(t, model.ProvenanceSession, records[0].Provenance)
	assert.Equal(t, "r1", records[1].ID)
}

func TestNewLedger_SortsMostRecentFirst(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-05-07", model.PartBibleReading, model.RolePrimary, "Alice"),
		record("r3", "2026-08-06", model.PartBibleReading, model.RolePrimary, "Alice"),
		record("r2", "2026-06-04", model.PartBibleReading, model.RolePrimary, "Alice"),
	}

	records := NewLedger(imported, nil).Records()

	assert.Equal(t, []string{"2026-08-06", "2026-06-04", "2026-05-07"},
		[]string{records[0].Date, records[1].Date, records[2].Date})
}

func TestBuildProfile_NeverParticipated(t *testing.T) {
	ledger := NewLedger(nil, nil)
	p := &model.Publisher{Name: "Alice"}

	profile := ledger.BuildProfile(p, Scope{}, testNow)

	assert.True(t, profile.Never())
	assert.Equal(t, 0, profile.Count)
	assert.Equal(t, NeverParticipated, profile.DaysSinceLast)
	assert.Empty(t, profile.LastDate)
}

func TestBuildProfile_ExactTypeScope(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-06", model.PartBibleReading, model.RolePrimary, "Alice"),
		record("r2", "2026-08-13", model.PartStartingDemo, model.RolePrimary, "Alice"),
		record("r3", "2026-08-20", model.PartBibleReading, model.RolePrimary, "Bob"),
	}
	ledger := NewLedger(imported, nil)
	alice := &model.Publisher{Name: "Alice"}

	profile := ledger.BuildProfile(alice, Scope{Type: model.PartBibleReading, Role: model.RolePrimary}, testNow)

	assert.Equal(t, 1, profile.Count)
	assert.Equal(t, "2026-08-06", profile.LastDate)
	assert.Equal(t, 24, profile.DaysSinceLast)
	// Category buckets cover every record regardless of scope.
	assert.Equal(t, 2, profile.CountsByCategory[model.CategoryStudent])
}

func TestBuildProfile_CategoryScope(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-06", model.PartStartingDemo, model.RolePrimary, "Alice"),
		record("r2", "2026-08-13", model.PartChairman, model.RolePrimary, "Alice"),
		record("r3", "2026-08-20", model.PartStartingDemo, model.RoleHelper, "Alice"),
	}
	ledger := NewLedger(imported, nil)
	alice := &model.Publisher{Name: "Alice"}

	student := ledger.BuildProfile(alice, Scope{Category: model.CategoryStudent}, testNow)
	assert.Equal(t, 1, student.Count)

	helper := ledger.BuildProfile(alice, Scope{Category: model.CategoryHelper}, testNow)
	assert.Equal(t, 1, helper.Count)
	assert.Equal(t, "2026-08-20", helper.LastDate)
}

func TestBuildProfile_MatchesAliases(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-06", model.PartBibleReading, model.RolePrimary, "J. Silva"),
	}
	ledger := NewLedger(imported, nil)
	p := &model.Publisher{Name: "João Silva", Aliases: []string{"J. Silva"}}

	profile := ledger.BuildProfile(p, Scope{}, testNow)

	assert.Equal(t, 1, profile.Count)
}

func TestBuildProfile_MatchesRawName(t *testing.T) {
	imported := []model.HistoryRecord{
		{ID: "r1", Date: "2026-08-06", Type: model.PartBibleReading,
			Role: model.RolePrimary, RawPublisherName: "Joao Silva"},
	}
	ledger := NewLedger(imported, nil)
	p := &model.Publisher{Name: "João Silva", Aliases: []string{"Joao Silva"}}

	profile := ledger.BuildProfile(p, Scope{}, testNow)

	assert.Equal(t, 1, profile.Count)
}

func TestBuildProfile_FutureDateClampsToZero(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-09-03", model.PartBibleReading, model.RolePrimary, "Alice"),
	}
	ledger := NewLedger(imported, nil)
	alice := &model.Publisher{Name: "Alice"}

	profile := ledger.BuildProfile(alice, Scope{}, testNow)

	assert.Equal(t, 0, profile.DaysSinceLast)
}

func TestInCooldown_PrimaryWindow(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-20", model.PartBibleReading, model.RolePrimary, "Alice"),
	}
	ledger := NewLedger(imported, nil)
	alice := &model.Publisher{Name: "Alice"}

	// Ten days since serving: still inside the three-week block.
	assert.True(t, ledger.InCooldown(alice, testNow, 3, 2))
	assert.False(t, ledger.InCooldown(alice, testNow.AddDate(0, 0, 21), 3, 2))
}

func TestInCooldown_HelperWindowIsShorter(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-25", model.PartStartingDemo, model.RoleHelper, "Alice"),
		record("r2", "2026-08-13", model.PartFollowingDemo, model.RoleHelper, "Bob"),
	}
	ledger := NewLedger(imported, nil)

	assert.True(t, ledger.InCooldown(&model.Publisher{Name: "Alice"}, testNow, 3, 2))
	// Bob helped two full weeks ago, past the helper block but inside what
	// a primary block would have been.
	assert.False(t, ledger.InCooldown(&model.Publisher{Name: "Bob"}, testNow, 3, 2))
}

func TestInCooldown_NeutralPartsNeverBlock(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-27", model.PartClosingPrayer, model.RolePrimary, "Alice"),
		record("r2", "2026-08-27", model.PartLocalNeeds, model.RolePrimary, "Alice"),
		record("r3", "2026-08-27", model.PartSong, model.RolePrimary, "Alice"),
	}
	ledger := NewLedger(imported, nil)

	assert.False(t, ledger.InCooldown(&model.Publisher{Name: "Alice"}, testNow, 3, 2))
}

func TestInCooldown_ZeroWindowDisables(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-08-29", model.PartBibleReading, model.RolePrimary, "Alice"),
	}
	ledger := NewLedger(imported, nil)

	assert.False(t, ledger.InCooldown(&model.Publisher{Name: "Alice"}, testNow, 0, 0))
}

func TestCooldownApplies(t *testing.T) {
	assert.True(t, CooldownApplies(model.PartBibleReading))
	assert.True(t, CooldownApplies(model.PartChairman))
	assert.False(t, CooldownApplies(model.PartOpeningPrayer))
	assert.False(t, CooldownApplies(model.PartClosingPrayer))
	assert.False(t, CooldownApplies(model.PartLocalNeeds))
	assert.False(t, CooldownApplies(model.PartSong))
}

func TestCountSince(t *testing.T) {
	imported := []model.HistoryRecord{
		record("r1", "2026-05-07", model.PartBibleReading, model.RolePrimary, "Alice"),
		record("r2", "2026-08-06", model.PartStartingDemo, model.RolePrimary, "Alice"),
		record("r3", "2026-08-20", model.PartChairman, model.RolePrimary, "Alice"),
	}
	ledger := NewLedger(imported, nil)
	alice := &model.Publisher{Name: "Alice"}

	assert.Equal(t, 2, ledger.CountSince(alice, Scope{}, "2026-06-01"))
	assert.Equal(t, 3, ledger.CountSince(alice, Scope{}, "2026-01-01"))
	assert.Equal(t, 1, ledger.CountSince(alice, Scope{Type: model.PartChairman}, "2026-06-01"))
}
