package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AuditResult summarizes a package manager's security audit report.
type AuditResult struct {
	Vulnerabilities VulnerabilityCounts `json:"vulnerabilities"`
	Advisories      []Advisory          `json:"advisories,omitempty"`
}

// VulnerabilityCounts breaks audit findings down by severity.
type VulnerabilityCounts struct {
	Info     int `json:"info"`
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
	Critical int `json:"critical"`
	Total    int `json:"total"`
}

// Advisory describes a single audit finding.
type Advisory struct {
	Module   string `json:"module"`
	Severity string `json:"severity"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"url,omitempty"`
}

// auditReport covers both report formats: npm v2 keys findings by module
// under "vulnerabilities", npm v1 and pnpm key them by advisory id under
// "advisories". Both carry severity counts under metadata.
type auditReport struct {
	Vulnerabilities map[string]auditVulnerability `json:"vulnerabilities"`
	Advisories      map[string]auditAdvisory      `json:"advisories"`
	Metadata        struct {
		Vulnerabilities VulnerabilityCounts `json:"vulnerabilities"`
	} `json:"metadata"`
}

type auditVulnerability struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Via      []any  `json:"via"`
}

type auditAdvisory struct {
	ModuleName string `json:"module_name"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// parseAudit decodes an audit report in either the npm v2 or the
// npm v1/pnpm JSON format.
func parseAudit(data []byte) (*AuditResult, error) {
	var report auditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing audit report: %w", err)
	}

	result := &AuditResult{Vulnerabilities: report.Metadata.Vulnerabilities}

	names := make([]string, 0, len(report.Vulnerabilities))
	for name := range report.Vulnerabilities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		vuln := report.Vulnerabilities[name]
		advisory := Advisory{
			Module:   coalesceName(vuln.Name, name),
			Severity: vuln.Severity,
		}

		// via mixes advisory objects with plain strings naming the
		// modules a finding is inherited through.
		for _, via := range vuln.Via {
			obj, ok := via.(map[string]any)
			if !ok {
				continue
			}
			if title, ok := obj["title"].(string); ok && advisory.Title == "" {
				advisory.Title = title
			}
			if url, ok := obj["url"].(string); ok && advisory.URL == "" {
				advisory.URL = url
			}
		}

		result.Advisories = append(result.Advisories, advisory)
	}

	ids := make([]string, 0, len(report.Advisories))
	for id := range report.Advisories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		adv := report.Advisories[id]
		result.Advisories = append(result.Advisories, Advisory{
			Module:   adv.ModuleName,
			Severity: adv.Severity,
			Title:    adv.Title,
			URL:      adv.URL,
		})
	}

	// v1 metadata omits the total.
	counts := &result.Vulnerabilities
	if counts.Total == 0 {
		counts.Total = counts.Info + counts.Low + counts.Moderate + counts.High + counts.Critical
	}

	return result, nil
}

// runAudit executes an audit command and parses its JSON report. Audit
// commands exit nonzero when vulnerabilities exist, so a failed exit with
// parseable output is still a report.
func runAudit(ctx context.Context, dir, program string, args []string) (*AuditResult, error) {
	output, err := runCommand(ctx, dir, program, args...)

	result, parseErr := parseAudit([]byte(output))
	if parseErr != nil {
		if err != nil {
			return nil, fmt.Errorf("%s audit: %w (output: %s)", program, err, strings.TrimSpace(output))
		}
		return nil, parseErr
	}

	return result, nil
}

func coalesceName(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
