package score

import (
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

// Compatibility buckets a resolved license expression for display.
// Advisory only, not legal advice.
type Compatibility string

const (
	Compatible  Compatibility = "compatible"
	Problematic Compatibility = "problematic"
	Unknown     Compatibility = "unknown"
)

// Permissive licenses safe to pull into most projects.
var compatibleLicenses = []string{
	"MIT",
	"Apache-2.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"ISC",
	"CC0-1.0",
	"0BSD",
}

// Copyleft licenses flagged for review before adoption.
var problematicLicenses = []string{
	"GPL-3.0",
	"AGPL-3.0",
	"AGPL",
}

// Classify buckets a resolved license string by case-insensitive
// substring match. The compatible list is checked first, so a dual
// expression such as "MIT OR GPL-3.0" classifies as compatible.
func Classify(license string) Compatibility {
	upper := strings.ToUpper(license)
	for _, id := range compatibleLicenses {
		if strings.Contains(upper, strings.ToUpper(id)) {
			return Compatible
		}
	}
	for _, id := range problematicLicenses {
		if strings.Contains(upper, strings.ToUpper(id)) {
			return Problematic
		}
	}
	return Unknown
}

// ValidSPDX reports whether the resolved license parses as a known
// SPDX expression. Classification never depends on it; callers use it
// to surface unrecognized expressions in logs.
func ValidSPDX(license string) bool {
	if license == "" {
		return false
	}
	valid, _ := spdxexp.ValidateLicenses([]string{license})
	return valid
}
