package model

import (
	"sort"
	"strings"
)

// Section is a segment of the meeting agenda.
type Section string

const (
	SectionOpening   Section = "Opening"
	SectionTreasures Section = "Treasures"
	SectionMinistry  Section = "Ministry"
	SectionLiving    Section = "Living"
	SectionClosing   Section = "Closing"
)

func (s Section) IsValid() bool {
	switch s {
	case SectionOpening, SectionTreasures, SectionMinistry, SectionLiving, SectionClosing:
		return true
	}
	return false
}

// PartType is the controlled vocabulary of assignable part types. The ranking
// engine and eligibility checker only ever see these canonical values;
// free-text titles are resolved at the ingestion boundary by CanonicalPartType.
type PartType string

const (
	PartChairman      PartType = "Chairman"
	PartOpeningPrayer PartType = "Opening prayer"
	PartClosingPrayer PartType = "Closing prayer"
	PartSong          PartType = "Song"
	PartTreasuresTalk PartType = "Treasures talk"
	PartSpiritualGems PartType = "Spiritual gems"
	PartBibleReading  PartType = "Bible reading"
	PartStartingDemo  PartType = "Starting a conversation"
	PartFollowingDemo PartType = "Following up"
	PartDiscipleDemo  PartType = "Making disciples"
	PartBeliefsDemo   PartType = "Explaining your beliefs"
	PartStudentTalk   PartType = "Student talk"
	PartLivingTalk    PartType = "Living talk"
	PartLocalNeeds    PartType = "Local needs"
	PartCBSConductor  PartType = "CBS conductor"
	PartCBSReader     PartType = "CBS reader"
	PartCounselPraise PartType = "Counsel and praise"
	PartTypeUnknown   PartType = ""
)

func (t PartType) IsValid() bool {
	switch t {
	case PartChairman, PartOpeningPrayer, PartClosingPrayer, PartSong,
		PartTreasuresTalk, PartSpiritualGems, PartBibleReading,
		PartStartingDemo, PartFollowingDemo, PartDiscipleDemo, PartBeliefsDemo,
		PartStudentTalk, PartLivingTalk, PartLocalNeeds,
		PartCBSConductor, PartCBSReader, PartCounselPraise:
		return true
	}
	return false
}

// IsDemonstration reports whether the part type is a ministry demonstration,
// the only kind that may carry a helper role.
func (t PartType) IsDemonstration() bool {
	switch t {
	case PartStartingDemo, PartFollowingDemo, PartDiscipleDemo, PartBeliefsDemo:
		return true
	}
	return false
}

// IsAssignable reports whether the part type is ever filled by the generator.
// Songs are never assigned.
func (t PartType) IsAssignable() bool {
	return t.IsValid() && t != PartSong
}

// Category buckets part types into coarse classes for participation
// distribution reporting. Bucketing is independent of fairness scoring.
type Category string

const (
	CategoryTeaching Category = "TEACHING"
	CategoryStudent  Category = "STUDENT"
	CategoryHelper   Category = "HELPER"
)

// CategoryOf maps a part type and role to its distribution category.
func CategoryOf(t PartType, role Role) Category {
	if role == RoleHelper {
		return CategoryHelper
	}
	switch t {
	case PartBibleReading, PartStartingDemo, PartFollowingDemo, PartDiscipleDemo,
		PartBeliefsDemo, PartStudentTalk:
		return CategoryStudent
	default:
		return CategoryTeaching
	}
}

// canonicalAliases maps normalized free-text part titles, as they appear in
// imported workbooks (Portuguese and English), to canonical part types.
var canonicalAliases = map[string]PartType{
	"chairman":                PartChairman,
	"presidente":              PartChairman,
	"presidente da reuniao":   PartChairman,
	"comentarios iniciais":    PartChairman,
	"comentarios finais":      PartChairman,
	"opening prayer":          PartOpeningPrayer,
	"oracao inicial":          PartOpeningPrayer,
	"closing prayer":          PartClosingPrayer,
	"oracao final":            PartClosingPrayer,
	"song":                    PartSong,
	"cantico":                 PartSong,
	"treasures talk":          PartTreasuresTalk,
	"discurso tesouros":       PartTreasuresTalk,
	"spiritual gems":          PartSpiritualGems,
	"joias espirituais":       PartSpiritualGems,
	"bible reading":           PartBibleReading,
	"leitura da biblia":       PartBibleReading,
	"starting a conversation": PartStartingDemo,
	"iniciando conversas":     PartStartingDemo,
	"following up":            PartFollowingDemo,
	"cultivando o interesse":  PartFollowingDemo,
	"making disciples":        PartDiscipleDemo,
	"fazendo discipulos":      PartDiscipleDemo,
	"explaining your beliefs": PartBeliefsDemo,
	"explicando suas crencas": PartBeliefsDemo,
	"student talk":            PartStudentTalk,
	"discurso de estudante":   PartStudentTalk,
	"living talk":             PartLivingTalk,
	"parte vida crista":       PartLivingTalk,
	"local needs":             PartLocalNeeds,
	"necessidades locais":     PartLocalNeeds,
	"cbs conductor":           PartCBSConductor,
	"dirigente ebc":           PartCBSConductor,
	"cbs reader":              PartCBSReader,
	"leitor ebc":              PartCBSReader,
	"counsel and praise":      PartCounselPraise,
	"elogios e conselhos":     PartCounselPraise,
}

// CanonicalPartType resolves a free-text part title to its canonical type.
// It is the single point where substring matching is allowed; everything
// downstream works with enum values only. Unrecognized titles yield
// PartTypeUnknown, which callers must treat as not assignable.
func CanonicalPartType(raw string) PartType {
	normalized := normalizeTitle(raw)
	if normalized == "" {
		return PartTypeUnknown
	}

	if t, ok := canonicalAliases[normalized]; ok {
		return t
	}

	// Already-canonical values pass through.
	if t := PartType(raw); t.IsValid() {
		return t
	}

	// Imported titles often carry numbering or themes around the core name,
	// e.g. "4. Iniciando conversas - De casa em casa". Longest alias first,
	// so a title containing several aliases resolves to the most specific
	// one, never to whatever map iteration happened to visit first.
	for _, alias := range aliasesBySpecificity {
		if strings.Contains(normalized, alias) {
			return canonicalAliases[alias]
		}
	}

	return PartTypeUnknown
}

var aliasesBySpecificity = sortedAliases()

func sortedAliases() []string {
	aliases := make([]string, 0, len(canonicalAliases))
	for alias := range canonicalAliases {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return aliases
}

var titleReplacer = strings.NewReplacer(
	"ã", "a", "á", "a", "â", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

func normalizeTitle(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = titleReplacer.Replace(s)
	// Strip leading numbering like "4." or "10)".
	s = strings.TrimLeft(s, "0123456789.) ")
	return strings.TrimSpace(s)
}
