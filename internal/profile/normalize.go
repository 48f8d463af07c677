// =============================================================================
// BOM Steel Filler - Dimension Normalizer
// =============================================================================
//
// Converts a single dimension token into millimeters. Tokens come from the
// profile descriptions of the bill of materials and use one of three notations:
//
//   | Notation        | Example  | Result (mm) |
//   |-----------------|----------|-------------|
//   | plain decimal   | 100      | 100         |
//   | comma decimal   | 12,7     | 12.7        |
//   | imperial inches | 1.1/2"   | 38.1        |
//   | imperial inches | 3/4"     | 19.05       |
//
// IMPERIAL NOTATION:
//   "W.F"" is read as W whole inches plus the fraction F. The segment before
//   the dot may itself be a fraction ("3/4""). Only a fractional second
//   segment contributes; "1.5"" is read as one inch.
//
// Normalization never fails. Anything it cannot read becomes 0, so callers
// must treat 0 as "not parsed" rather than as a measured zero.
//
// =============================================================================

package profile

import (
	"math"
	"strconv"
	"strings"
)

// MillimetersPerInch is the inch-to-millimeter conversion factor.
const MillimetersPerInch = 25.4

// Normalize converts one dimension token into millimeters.
func Normalize(token string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(token), ",", ".")

	if !strings.Contains(s, `"`) {
		value, ok := parseNumber(s)
		if !ok {
			return 0
		}
		return value
	}

	inches, ok := parseInches(strings.ReplaceAll(s, `"`, ""))
	if !ok {
		return 0
	}
	return inches * MillimetersPerInch
}

// parseInches reads the "W.F" notation (inch mark already removed) and returns
// the total in inches. Any malformed segment invalidates the whole token.
func parseInches(s string) (float64, bool) {
	parts := strings.Split(s, ".")
	total := 0.0

	// Whole (or fractional) inches before the dot.
	if head := parts[0]; head != "" {
		var value float64
		var ok bool
		if strings.Contains(head, "/") {
			value, ok = parseFraction(head)
		} else {
			value, ok = parseNumber(head)
		}
		if !ok {
			return 0, false
		}
		total += value
	}

	// Fraction after the dot.
	if len(parts) > 1 && strings.Contains(parts[1], "/") {
		value, ok := parseFraction(parts[1])
		if !ok {
			return 0, false
		}
		total += value
	}

	return total, true
}

// parseFraction evaluates "num/den". A zero denominator is a parse failure.
func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found || strings.Contains(den, "/") {
		return 0, false
	}

	n, ok := parseNumber(num)
	if !ok {
		return 0, false
	}
	d, ok := parseNumber(den)
	if !ok || d == 0 {
		return 0, false
	}

	return n / d, true
}

// parseNumber parses a finite decimal number.
func parseNumber(s string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
