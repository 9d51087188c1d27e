// Package registry talks to the npm registry: packument metadata,
// weekly download counts, and text search.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkgscout/discovery/client"
	"github.com/pkgscout/discovery/internal/core"
)

const (
	// DefaultURL is the public npm registry.
	DefaultURL = "https://registry.npmjs.org"

	// DefaultDownloadsURL is the npm download-counts API.
	DefaultDownloadsURL = "https://api.npmjs.org"
)

// Getter fetches a URL and decodes the JSON response into v.
// *client.Client and *client.BreakerClient both satisfy it.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

type Registry struct {
	baseURL      string
	downloadsURL string
	client       Getter
	urls         *URLs
}

// New returns a registry client. Empty URLs fall back to the public
// npm endpoints; a nil getter falls back to the default HTTP client.
func New(baseURL, downloadsURL string, getter Getter) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if downloadsURL == "" {
		downloadsURL = DefaultDownloadsURL
	}
	if getter == nil {
		getter = client.DefaultClient()
	}
	r := &Registry{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		downloadsURL: strings.TrimSuffix(downloadsURL, "/"),
		client:       getter,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) URLs() client.URLBuilder {
	return r.urls
}

// packument is the registry document for a package. Fields that npm
// publishes in more than one shape are decoded as any and normalized
// by the extract helpers below.
type packument struct {
	ID          string                 `json:"_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	License     core.License           `json:"license"`
	Homepage    any                    `json:"homepage"`
	Repository  any                    `json:"repository"`
	Versions    map[string]versionInfo `json:"versions"`
	Time        map[string]any         `json:"time"`
	Maintainers []maintainerInfo       `json:"maintainers"`
	DistTags    map[string]string      `json:"dist-tags"`
}

type versionInfo struct {
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Keywords    any              `json:"keywords"`
	License     core.License     `json:"license"`
	Homepage    any              `json:"homepage"`
	Repository  any              `json:"repository"`
	Deprecated  deprecation      `json:"deprecated"`
	Types       any              `json:"types"`
	Typings     any              `json:"typings"`
	Maintainers []maintainerInfo `json:"maintainers"`
}

type maintainerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// deprecation tolerates both forms of the packument deprecated field:
// usually a message string, occasionally a bare boolean.
type deprecation string

func (d *deprecation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = deprecation(s)
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil && flag {
		*d = "true"
		return nil
	}
	*d = ""
	return nil
}

// FetchMetadata fetches and normalizes the packument for a package.
// Unknown packages return *client.NotFoundError.
func (r *Registry) FetchMetadata(ctx context.Context, name string) (*core.Metadata, error) {
	escapedName := url.PathEscape(name)
	packumentURL := fmt.Sprintf("%s/%s", r.baseURL, escapedName)

	var resp packument
	if err := r.client.GetJSON(ctx, packumentURL, &resp); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Name: name}
		}
		return nil, err
	}

	latestVersion := resp.DistTags["latest"]
	var latest versionInfo
	if latestVersion != "" {
		latest = resp.Versions[latestVersion]
	} else if len(resp.Versions) > 0 {
		for _, v := range resp.Versions {
			latest = v
			break
		}
	}

	license := latest.License
	if !license.Defined() {
		license = resp.License
	}

	maintainers := resp.Maintainers
	if len(maintainers) == 0 {
		maintainers = latest.Maintainers
	}

	meta := &core.Metadata{
		Name:        coalesceString(resp.Name, resp.ID, name),
		Version:     coalesceString(latestVersion, latest.Version),
		Description: coalesceString(latest.Description, resp.Description),
		License:     license,
		Deprecated:  string(latest.Deprecated),
		Time:        extractTimes(resp.Time),
		Repository:  extractRepoURL(resp.Repository, latest.Repository),
		Homepage:    coalesceString(extractString(latest.Homepage), extractString(resp.Homepage)),
		Keywords:    extractKeywords(latest.Keywords),
		Maintainers: convertMaintainers(maintainers),
		HasTypes:    extractString(latest.Types) != "" || extractString(latest.Typings) != "",
	}

	return meta, nil
}

type downloadsResponse struct {
	Downloads int    `json:"downloads"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Package   string `json:"package"`
}

// WeeklyDownloads returns the package's download count for the last
// week. Any failure (network, HTTP, decode) degrades to 0: download
// counts enrich scoring but never block an evaluation.
func (r *Registry) WeeklyDownloads(ctx context.Context, name string) int {
	// Scoped names keep their slash; the downloads API takes the
	// @scope/name path literally.
	downloadsURL := fmt.Sprintf("%s/downloads/point/last-week/%s", r.downloadsURL, name)

	var resp downloadsResponse
	if err := r.client.GetJSON(ctx, downloadsURL, &resp); err != nil {
		return 0
	}
	if resp.Downloads < 0 {
		return 0
	}
	return resp.Downloads
}

func extractString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s
		}
	}
	return ""
}

func extractRepoURL(pkgRepo, versionRepo any) string {
	for _, repo := range []any{versionRepo, pkgRepo} {
		switch r := repo.(type) {
		case string:
			return normalizeGitURL(r)
		case map[string]any:
			if url, ok := r["url"].(string); ok {
				return normalizeGitURL(url)
			}
		case []any:
			if len(r) > 0 {
				if m, ok := r[0].(map[string]any); ok {
					if url, ok := m["url"].(string); ok {
						return normalizeGitURL(url)
					}
				}
			}
		}
	}
	return ""
}

func normalizeGitURL(u string) string {
	u = strings.TrimPrefix(u, "git+")
	u = strings.TrimPrefix(u, "git://")
	u = strings.TrimSuffix(u, ".git")
	if strings.HasPrefix(u, "github.com/") {
		u = "https://" + u
	}
	return u
}

func extractKeywords(v any) []string {
	switch k := v.(type) {
	case []any:
		keywords := make([]string, 0, len(k))
		for _, item := range k {
			if s, ok := item.(string); ok && s != "" {
				keywords = append(keywords, s)
			}
		}
		return keywords
	case string:
		if k != "" {
			return []string{k}
		}
	}
	return nil
}

// extractTimes keeps the string-valued entries of the packument time
// map. Unpublished packages nest an object under "unpublished"; that
// entry and anything else non-string is skipped.
func extractTimes(v map[string]any) map[string]time.Time {
	if len(v) == 0 {
		return nil
	}
	times := make(map[string]time.Time, len(v))
	for key, raw := range v {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			times[key] = t
		}
	}
	return times
}

func convertMaintainers(infos []maintainerInfo) []core.Maintainer {
	if len(infos) == 0 {
		return nil
	}
	maintainers := make([]core.Maintainer, len(infos))
	for i, m := range infos {
		maintainers[i] = core.Maintainer{Name: m.Name, Email: m.Email}
	}
	return maintainers
}

func coalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
