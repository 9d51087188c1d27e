// Package core provides the shared domain types for npm package metadata.
package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Synthetic keys the registry adds to the publish-time map alongside the
// per-version entries.
const (
	timeCreatedKey  = "created"
	timeModifiedKey = "modified"
)

// Metadata is the normalized view of one package's registry document.
// Name is always present and non-empty; every other field defaults
// safely when the registry omits it.
type Metadata struct {
	Name        string
	Version     string // latest dist-tag
	Description string
	License     License
	Deprecated  string // deprecation message, empty if not deprecated
	Time        map[string]time.Time
	Repository  string
	Homepage    string
	Keywords    []string
	Maintainers []Maintainer
	HasTypes    bool // latest version ships a types/typings declaration
}

// Maintainer represents a declared package maintainer.
// The count matters more than the identity for scoring purposes.
type Maintainer struct {
	Name  string
	Email string
}

// IsDeprecated reports whether the package carries a deprecation marker.
func (m *Metadata) IsDeprecated() bool {
	return m.Deprecated != ""
}

// LastActivity returns the later of the "modified" and "created"
// timestamps. The zero time means neither is present — the package is
// treated as infinitely stale.
func (m *Metadata) LastActivity() time.Time {
	created := m.Time[timeCreatedKey]
	modified := m.Time[timeModifiedKey]
	if modified.After(created) {
		return modified
	}
	return created
}

// ReleaseCount returns the number of published versions, excluding the
// synthetic "created" and "modified" entries.
func (m *Metadata) ReleaseCount() int {
	n := len(m.Time)
	if _, ok := m.Time[timeCreatedKey]; ok {
		n--
	}
	if _, ok := m.Time[timeModifiedKey]; ok {
		n--
	}
	return n
}

// TypesOnlyNamespace reports whether the package name follows the
// @types/ convention for standalone type declarations.
func (m *Metadata) TypesOnlyNamespace() bool {
	return strings.HasPrefix(m.Name, "@types/")
}

// License captures the three shapes an npm manifest uses for its
// license field: a plain string, an object with a "type" key, or a
// list of either. Decoding is total — unrecognized shapes resolve to
// "Unknown" rather than failing.
type License struct {
	exprs []string
}

// UnmarshalJSON accepts any of the license shapes and never returns an
// error; values it cannot interpret are simply dropped.
func (l *License) UnmarshalJSON(data []byte) error {
	l.exprs = nil

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	l.exprs = licenseExprs(raw)
	return nil
}

func licenseExprs(v any) []string {
	switch lic := v.(type) {
	case string:
		if lic != "" {
			return []string{lic}
		}
	case map[string]any:
		if t, ok := lic["type"].(string); ok && t != "" {
			return []string{t}
		}
	case []any:
		var exprs []string
		for _, item := range lic {
			exprs = append(exprs, licenseExprs(item)...)
		}
		return exprs
	}
	return nil
}

// Defined reports whether any license expression was recognized.
func (l License) Defined() bool {
	return len(l.exprs) > 0
}

// Resolve returns the license as a single display string: list entries
// joined with ", ", or the literal "Unknown" when nothing was declared.
func (l License) Resolve() string {
	if len(l.exprs) == 0 {
		return "Unknown"
	}
	return strings.Join(l.exprs, ", ")
}

// LicenseOf builds a License from resolved expressions. Intended for
// tests and for callers that already hold normalized strings.
func LicenseOf(exprs ...string) License {
	return License{exprs: exprs}
}
