package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPartType(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected PartType
	}{
		{"exact english", "Bible reading", PartBibleReading},
		{"exact portuguese", "Leitura da Bíblia", PartBibleReading},
		{"accented portuguese", "Oração inicial", PartOpeningPrayer},
		{"canonical passthrough", "CBS conductor", PartCBSConductor},
		{"numbered title", "4. Iniciando conversas", PartStartingDemo},
		{"numbered with theme", "5. Cultivando o interesse - De casa em casa", PartFollowingDemo},
		{"mixed case", "SPIRITUAL GEMS", PartSpiritualGems},
		{"whitespace", "  chairman  ", PartChairman},
		{"song", "Cântico 42", PartSong},
		{"longest alias wins", "Cântico 12 e oração final", PartClosingPrayer},
		{"longest alias wins reversed", "Oração final e cântico 12", PartClosingPrayer},
		{"living talk", "Parte vida cristã", PartLivingTalk},
		{"local needs", "Necessidades locais", PartLocalNeeds},
		{"unknown", "Coffee break", PartTypeUnknown},
		{"empty", "", PartTypeUnknown},
		{"numbers only", "42", PartTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalPartType(tt.raw))
		})
	}
}

func TestPartType_IsAssignable(t *testing.T) {
	assert.True(t, PartChairman.IsAssignable())
	assert.True(t, PartBibleReading.IsAssignable())
	assert.False(t, PartSong.IsAssignable())
	assert.False(t, PartTypeUnknown.IsAssignable())
}

func TestPartType_IsDemonstration(t *testing.T) {
	assert.True(t, PartStartingDemo.IsDemonstration())
	assert.True(t, PartBeliefsDemo.IsDemonstration())
	assert.False(t, PartBibleReading.IsDemonstration())
	assert.False(t, PartChairman.IsDemonstration())
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryHelper, CategoryOf(PartStartingDemo, RoleHelper))
	assert.Equal(t, CategoryStudent, CategoryOf(PartStartingDemo, RolePrimary))
	assert.Equal(t, CategoryStudent, CategoryOf(PartBibleReading, RolePrimary))
	assert.Equal(t, CategoryTeaching, CategoryOf(PartChairman, RolePrimary))
	assert.Equal(t, CategoryTeaching, CategoryOf(PartCBSConductor, RolePrimary))
}

func TestAvailability_AvailableOn(t *testing.T) {
	always := Availability{Mode: AvailabilityAlways, ExceptionDates: []string{"2026-09-03"}}
	assert.True(t, always.AvailableOn("2026-09-10"))
	assert.False(t, always.AvailableOn("2026-09-03"))

	never := Availability{Mode: AvailabilityNever, AvailableDates: []string{"2026-09-10"}}
	assert.True(t, never.AvailableOn("2026-09-10"))
	assert.False(t, never.AvailableOn("2026-09-03"))
}

func TestPublisher_MatchesName(t *testing.T) {
	p := Publisher{Name: "João Silva", Aliases: []string{"J. Silva", "Joao Silva"}}

	assert.True(t, p.MatchesName("João Silva"))
	assert.True(t, p.MatchesName("J. Silva"))
	assert.False(t, p.MatchesName("João"))
	assert.False(t, p.MatchesName(""))
}

func TestPart_NeedsAssignment(t *testing.T) {
	pending := Part{Status: StatusPending}
	assert.True(t, pending.NeedsAssignment())

	completed := Part{Status: StatusCompleted}
	assert.False(t, completed.NeedsAssignment())

	cancelled := Part{Status: StatusCancelled, ResolvedPublisherName: "Someone"}
	assert.False(t, cancelled.NeedsAssignment())
}
