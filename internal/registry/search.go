package registry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
)

// DefaultSearchSize is how many hits a search returns when the caller
// does not say otherwise.
const DefaultSearchSize = 20

// enrichConcurrency bounds the parallel download-count lookups when
// filling in search hits.
const enrichConcurrency = 8

// SearchHit is one entry from the registry search API, optionally
// enriched with a weekly download count.
type SearchHit struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Date        time.Time `json:"date"`
	Links       HitLinks  `json:"links"`
	Publisher   string    `json:"publisher,omitempty"`
	Score       HitScore  `json:"score"`
	SearchScore float64   `json:"searchScore"`
	Downloads   int       `json:"downloads"`
}

// HitLinks are the package's outbound links as reported by search.
type HitLinks struct {
	NPM        string `json:"npm,omitempty"`
	Homepage   string `json:"homepage,omitempty"`
	Repository string `json:"repository,omitempty"`
}

// HitScore is the registry's own relevance scoring for a hit.
type HitScore struct {
	Final       float64 `json:"final"`
	Quality     float64 `json:"quality"`
	Popularity  float64 `json:"popularity"`
	Maintenance float64 `json:"maintenance"`
}

type searchResponse struct {
	Objects []struct {
		Package struct {
			Name        string   `json:"name"`
			Version     string   `json:"version"`
			Description string   `json:"description"`
			Keywords    []string `json:"keywords"`
			Date        string   `json:"date"`
			Links       struct {
				NPM        string `json:"npm"`
				Homepage   string `json:"homepage"`
				Repository string `json:"repository"`
			} `json:"links"`
			Publisher struct {
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"publisher"`
		} `json:"package"`
		Score struct {
			Final  float64 `json:"final"`
			Detail struct {
				Quality     float64 `json:"quality"`
				Popularity  float64 `json:"popularity"`
				Maintenance float64 `json:"maintenance"`
			} `json:"detail"`
		} `json:"score"`
		SearchScore float64 `json:"searchScore"`
	} `json:"objects"`
	Total int `json:"total"`
}

// Search queries the registry full-text search. size <= 0 falls back
// to DefaultSearchSize. Hits come back in registry relevance order.
func (r *Registry) Search(ctx context.Context, query string, size int) ([]SearchHit, error) {
	if size <= 0 {
		size = DefaultSearchSize
	}
	searchURL := fmt.Sprintf("%s/-/v1/search?text=%s&size=%d", r.baseURL, url.QueryEscape(query), size)

	var resp searchResponse
	if err := r.client.GetJSON(ctx, searchURL, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	hits := make([]SearchHit, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		date, _ := time.Parse(time.RFC3339, obj.Package.Date)
		hits = append(hits, SearchHit{
			Name:        obj.Package.Name,
			Version:     obj.Package.Version,
			Description: obj.Package.Description,
			Keywords:    obj.Package.Keywords,
			Date:        date,
			Links: HitLinks{
				NPM:        obj.Package.Links.NPM,
				Homepage:   obj.Package.Links.Homepage,
				Repository: obj.Package.Links.Repository,
			},
			Publisher: obj.Package.Publisher.Username,
			Score: HitScore{
				Final:       obj.Score.Final,
				Quality:     obj.Score.Detail.Quality,
				Popularity:  obj.Score.Detail.Popularity,
				Maintenance: obj.Score.Detail.Maintenance,
			},
			SearchScore: obj.SearchScore,
		})
	}
	return hits, nil
}

// EnrichDownloads fills in the weekly download count for each hit,
// a bounded number at a time. Lookups that fail leave the count 0.
func (r *Registry) EnrichDownloads(ctx context.Context, hits []SearchHit) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range hits {
		g.Go(func() error {
			hits[i].Downloads = r.WeeklyDownloads(gCtx, hits[i].Name)
			return nil
		})
	}
	// The workers never return an error.
	_ = g.Wait()
}

// RankHits re-orders hits by fuzzy name relevance to the query.
// Matching hits come first in match-score order; the rest keep their
// registry order. The input slice is not modified.
func RankHits(query string, hits []SearchHit) []SearchHit {
	if query == "" || len(hits) == 0 {
		return hits
	}

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Name
	}
	matches := fuzzy.Find(query, names)

	ranked := make([]SearchHit, 0, len(hits))
	matched := make(map[int]bool, len(matches))
	for _, m := range matches {
		ranked = append(ranked, hits[m.Index])
		matched[m.Index] = true
	}
	for i, h := range hits {
		if !matched[i] {
			ranked = append(ranked, h)
		}
	}
	return ranked
}
