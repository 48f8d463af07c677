// =============================================================================
// BOM Steel Filler - Profile Classifier
// =============================================================================
//
// Maps a free-text profile description to the section code used in column A
// of the takeoff sheet and to the family tag that drives dimension extraction.
//
// RULES (checked in order against the upper-cased description, first wins):
//
//   | # | Condition                                  | Section             | Family     |
//   |---|--------------------------------------------|---------------------|------------|
//   | 1 | contains "["                               | U.s                 | PERFIL_U   |
//   | 2 | contains "UENR", "IENR", "CART" or "CA "   | U.e                 | TERCA      |
//   | 3 | contains "L DOBRADO" or starts with "L "   | L DOBRADO           | CANTONEIRA |
//   | 4 | contains "RED"                             | FERRO MECANICO RED. | TUBO       |
//   | 5 | contains "TUBO"                            | TUBO                | TUBO       |
//   | 6 | starts with "U "                           | U.s                 | PERFIL_U   |
//   | 7 | anything else                              | N/D                 | OUTROS     |
//
// The rules overlap. "L DOBRADO 50X5 RED" is an angle, not a round bar,
// because rule 3 is checked before rule 4. Rule 6 only catches plain "U ..."
// channel descriptions that would otherwise fall through to N/D.
//
// CUSTOMIZATION:
//   New profile families are added by inserting a rule in the right position
//   of classificationRules and a matching case in Extract.
//
// =============================================================================

package profile

import (
	"strings"

	"github.com/ginjaninja78/bom-steel-filler/internal/types"
)

// rule is a single classification rule.
type rule struct {
	name    string
	matches func(upper string) bool
	result  types.Classification
}

// classificationRules is evaluated top to bottom.
var classificationRules = []rule{
	{
		name:    "perfil-u",
		matches: containsAny("["),
		result:  types.Classification{Section: types.SectionUSimple, Family: types.FamilyPerfilU},
	},
	{
		name:    "terca",
		matches: containsAny("UENR", "IENR", "CART", "CA "),
		result:  types.Classification{Section: types.SectionUEnrijecido, Family: types.FamilyTerca},
	},
	{
		name: "cantoneira",
		matches: func(upper string) bool {
			return strings.Contains(upper, "L DOBRADO") || strings.HasPrefix(upper, "L ")
		},
		result: types.Classification{Section: types.SectionLDobrado, Family: types.FamilyCantoneira},
	},
	{
		name:    "redondo",
		matches: containsAny("RED"),
		result:  types.Classification{Section: types.SectionRedondo, Family: types.FamilyTubo},
	},
	{
		name:    "tubo",
		matches: containsAny("TUBO"),
		result:  types.Classification{Section: types.SectionTubo, Family: types.FamilyTubo},
	},
	{
		name:    "perfil-u-prefix",
		matches: func(upper string) bool { return strings.HasPrefix(upper, "U ") },
		result:  types.Classification{Section: types.SectionUSimple, Family: types.FamilyPerfilU},
	},
}

// unclassified is returned when no rule matches.
var unclassified = types.Classification{Section: types.SectionUnknown, Family: types.FamilyOutros}

// Classify returns the section code and family tag for a description.
// It is a pure function of its input.
func Classify(description string) types.Classification {
	upper := strings.ToUpper(description)

	for _, r := range classificationRules {
		if r.matches(upper) {
			return r.result
		}
	}

	return unclassified
}

// MatchedRule returns the name of the rule that classifies the description,
// or "fallback" when none does.
func MatchedRule(description string) string {
	upper := strings.ToUpper(description)

	for _, r := range classificationRules {
		if r.matches(upper) {
			return r.name
		}
	}

	return "fallback"
}

// containsAny returns a matcher that is true when the input contains any of
// the given substrings.
func containsAny(substrings ...string) func(string) bool {
	return func(upper string) bool {
		for _, s := range substrings {
			if strings.Contains(upper, s) {
				return true
			}
		}
		return false
	}
}
