package profile

import (
	"regexp"

	"github.com/ginjaninja78/bom-steel-filler/internal/types"
)

// tokenPattern matches maximal runs of digits, dots, slashes and inch marks.
var tokenPattern = regexp.MustCompile(`[0-9./"]+`)

// Tokens returns the numeric tokens of a description, left to right.
//
// EXAMPLE:
//   "U 100x50x3mm"      -> ["100", "50", "3"]
//   "L DOBRADO 1.1/2"x1/8"" -> ["1.1/2"", "1/8""]
func Tokens(description string) []string {
	return tokenPattern.FindAllString(description, -1)
}

// Extract assigns the numeric tokens of a description to the A, B, C and
// thickness slots according to the family arity rules:
//
//   | Family     | Tokens | A  | B  | C  | Thickness |
//   |------------|--------|----|----|----|-----------|
//   | PERFIL_U   | >= 3   | t0 | t1 | -  | t2        |
//   | TERCA      | >= 4   | t0 | t1 | t2 | t3        |
//   | CANTONEIRA | == 2   | t0 | t0 | -  | t1        |
//   | CANTONEIRA | >= 3   | t0 | t1 | -  | t2        |
//   | TUBO       | >= 1   | -  | -  | -  | t0        |
//
// When the token count is below the minimum, or the family is OUTROS, the
// slots stay at 0.
func Extract(description string, family types.FamilyTag) types.DimensionSet {
	tokens := Tokens(description)
	var dims types.DimensionSet

	switch family {
	case types.FamilyPerfilU:
		if len(tokens) >= 3 {
			dims.A = Normalize(tokens[0])
			dims.B = Normalize(tokens[1])
			dims.Thickness = Normalize(tokens[2])
		}

	case types.FamilyTerca:
		if len(tokens) >= 4 {
			dims.A = Normalize(tokens[0])
			dims.B = Normalize(tokens[1])
			dims.C = Normalize(tokens[2])
			dims.Thickness = Normalize(tokens[3])
		}

	case types.FamilyCantoneira:
		switch {
		case len(tokens) == 2:
			// Equal-leg angle: one leg size for both.
			leg := Normalize(tokens[0])
			dims.A, dims.B = leg, leg
			dims.Thickness = Normalize(tokens[1])
		case len(tokens) >= 3:
			dims.A = Normalize(tokens[0])
			dims.B = Normalize(tokens[1])
			dims.Thickness = Normalize(tokens[2])
		}

	case types.FamilyTubo:
		// Round bars have a single diameter, stored in the thickness slot.
		if len(tokens) >= 1 {
			dims.Thickness = Normalize(tokens[0])
		}
	}

	return dims
}

// Analyze classifies a description and extracts its dimensions in one call.
func Analyze(description string) (types.Classification, types.DimensionSet) {
	class := Classify(description)
	return class, Extract(description, class.Family)
}
