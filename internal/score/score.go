// Package score derives numeric quality signals from npm registry
// metadata. All functions are pure: one packument plus one download
// count in, scores out, with the clock passed explicitly.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/pkgscout/discovery/internal/core"
)

// Weight constants for the composite formula. They sum to 0.70, not
// 1.0, and the composite is left unclamped; the recommendation cutoff
// is calibrated against exactly this scale.
const (
	weightQuality     = 0.15
	weightMaintenance = 0.25
	weightSecurity    = 0.20
	weightPopularity  = 0.10
	compositeBase     = 3.0
)

// Popularity steps, weekly downloads.
const (
	downloadsMassive = 10_000_000
	downloadsHuge    = 1_000_000
	downloadsLarge   = 100_000
	downloadsMedium  = 10_000
	downloadsSmall   = 1_000
)

const daysPerMonth = 30

// Record holds the per-dimension scores for one package, each 0–10,
// plus the weighted composite.
type Record struct {
	Maintenance int     `json:"maintenance"`
	Popularity  int     `json:"popularity"`
	Quality     int     `json:"quality"`
	Security    int     `json:"security"`
	Composite   float64 `json:"composite"`
}

// Compute scores a package from its metadata and weekly download
// count. now anchors the recency math so results are reproducible.
func Compute(meta *core.Metadata, weeklyDownloads int, now time.Time) Record {
	m := Maintenance(meta, now)
	p := Popularity(weeklyDownloads)
	q := Quality(meta)
	s := Security(meta)
	return Record{
		Maintenance: m,
		Popularity:  p,
		Quality:     q,
		Security:    s,
		Composite:   Composite(m, q, s, p),
	}
}

// Maintenance scores how actively a package is kept up.
//
// Exactly one recency band applies, measured in months since the last
// registry activity (a missing timestamp lands in the stale band):
//
//	< 6   +3
//	< 12  +2
//	< 24  +1
//	> 36  -5
//
// A deprecated package scores 0 no matter how fresh or prolific it is.
// Otherwise a release-cadence bonus is added: more than 10 published
// versions +2, at least 6 versions +1. The result is clamped to [0, 10].
func Maintenance(meta *core.Metadata, now time.Time) int {
	s := 0
	switch months := monthsSince(now, meta.LastActivity()); {
	case months < 6:
		s += 3
	case months < 12:
		s += 2
	case months < 24:
		s += 1
	case months > 36:
		s -= 5
	}

	if meta.IsDeprecated() {
		return 0
	}

	switch releases := meta.ReleaseCount(); {
	case releases > 10:
		s += 2
	case releases >= 6:
		s += 1
	}

	return clamp(s)
}

// Popularity maps weekly downloads onto a coarse 1–10 step scale.
// Ranking ties are broken on this step value, not on raw downloads.
func Popularity(weeklyDownloads int) int {
	switch {
	case weeklyDownloads >= downloadsMassive:
		return 10
	case weeklyDownloads >= downloadsHuge:
		return 8
	case weeklyDownloads >= downloadsLarge:
		return 6
	case weeklyDownloads >= downloadsMedium:
		return 4
	case weeklyDownloads >= downloadsSmall:
		return 2
	default:
		return 1
	}
}

// Quality rewards packaging hygiene: bundled type definitions (+3) or
// membership in the @types namespace (+2, mutually exclusive), and one
// point each for a repository link, keywords, a homepage, and at least
// one listed maintainer. Capped at 10.
func Quality(meta *core.Metadata) int {
	s := 0
	switch {
	case meta.HasTypes:
		s += 3
	case meta.TypesOnlyNamespace():
		s += 2
	}
	if meta.Repository != "" {
		s++
	}
	if len(meta.Keywords) > 0 {
		s++
	}
	if meta.Homepage != "" {
		s++
	}
	if len(meta.Maintainers) > 0 {
		s++
	}
	return clamp(s)
}

// Security starts at 10 and deducts for advisory signals: deprecation
// -8, a name containing both "test" and "package" -3. Floor 0. This is
// a naming heuristic only; the authoritative check is the audit run
// after installation.
func Security(meta *core.Metadata) int {
	s := 10
	if meta.IsDeprecated() {
		s -= 8
	}
	name := strings.ToLower(meta.Name)
	if strings.Contains(name, "test") && strings.Contains(name, "package") {
		s -= 3
	}
	if s < 0 {
		return 0
	}
	return s
}

// Composite collapses the four dimensions into one ranking value,
// rounded to a single decimal:
//
//	quality*0.15 + maintenance*0.25 + security*0.20 + popularity*0.10 + 3.0
//
// All dimensions at 10 give 10.0; all at 0 give the 3.0 base.
func Composite(maintenance, quality, security, popularity int) float64 {
	v := float64(quality)*weightQuality +
		float64(maintenance)*weightMaintenance +
		float64(security)*weightSecurity +
		float64(popularity)*weightPopularity +
		compositeBase
	return math.Round(v*10) / 10
}

// monthsSince measures elapsed time in 30-day months. A zero t
// saturates the subtraction and lands in the stale band.
func monthsSince(now, t time.Time) float64 {
	return now.Sub(t).Hours() / (24 * daysPerMonth)
}

// clamp restricts a dimension score to [0, 10].
func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
