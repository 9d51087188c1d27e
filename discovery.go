// Package discovery evaluates npm packages for dependency selection.
//
// The package fetches registry metadata and weekly download counts, scores
// each package on maintenance, popularity, quality, and security, and ranks
// the results so callers can pick a dependency with evidence instead of
// guesswork. An install workflow drives a package manager (npm or pnpm)
// once a candidate is confirmed.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/pkgscout/discovery"
//		"github.com/pkgscout/discovery/config"
//	)
//
//	assistant, err := discovery.FromConfig(config.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	evals, err := assistant.Evaluate(context.Background(), []string{"lodash", "underscore"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if pick, ok := assistant.Recommend(evals); ok {
//		fmt.Println(pick.Name, pick.Score.Composite)
//	}
//
// The lower-level pieces are exposed for callers that want to assemble
// their own pipeline:
//
//	reg := discovery.NewRegistry("", "", nil)
//	meta, err := reg.FetchMetadata(context.Background(), "react")
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/pkgscout/discovery/client"
	"github.com/pkgscout/discovery/config"
	"github.com/pkgscout/discovery/internal/core"
	"github.com/pkgscout/discovery/internal/evaluate"
	"github.com/pkgscout/discovery/internal/manager"
	"github.com/pkgscout/discovery/internal/registry"
	"github.com/pkgscout/discovery/internal/score"
)

// ErrNotConfirmed is returned by Install when the caller has not confirmed
// the installation. Nothing is executed until confirmed is true.
var ErrNotConfirmed = errors.New("install not confirmed")

// ErrNoCandidates is returned by Evaluate when the candidate list is empty.
var ErrNoCandidates = evaluate.ErrNoCandidates

// Re-export types from internal/core
type (
	// Metadata is normalized package metadata from the registry.
	Metadata = core.Metadata

	// Maintainer identifies one package maintainer.
	Maintainer = core.Maintainer

	// License is a package license in any of the shapes the registry
	// publishes: an SPDX string, an object, or a list of either.
	License = core.License
)

// Re-export types from internal/evaluate and internal/score
type (
	// Evaluation is one package's evaluation record.
	Evaluation = evaluate.Evaluation

	// Evaluator scores batches of candidate packages concurrently.
	Evaluator = evaluate.Evaluator

	// EvaluatorOption configures an Evaluator.
	EvaluatorOption = evaluate.Option

	// Source supplies package metadata and download counts to an Evaluator.
	Source = evaluate.Source

	// ScoreRecord holds the per-dimension scores for one package.
	ScoreRecord = score.Record

	// Compatibility classifies a license for permissive-use compatibility.
	Compatibility = score.Compatibility
)

// Re-export types from internal/registry
type (
	// Registry is the npm registry client.
	Registry = registry.Registry

	// SearchHit is one registry search result.
	SearchHit = registry.SearchHit

	// HitLinks holds the external URLs of a search hit.
	HitLinks = registry.HitLinks

	// HitScore is the registry's own ranking breakdown for a search hit.
	HitScore = registry.HitScore

	// Getter fetches a URL and decodes the JSON response.
	Getter = registry.Getter
)

// Re-export types from internal/manager
type (
	// Driver runs package-manager commands against a project.
	Driver = manager.Driver

	// Workflow runs the install pipeline: install, audit, test, lint.
	Workflow = manager.Workflow

	// WorkflowOption configures a Workflow.
	WorkflowOption = manager.WorkflowOption

	// Report collects every step outcome of a workflow run.
	Report = manager.Report

	// InstallResult records the outcome of an install command.
	InstallResult = manager.InstallResult

	// AuditResult summarizes a security audit report.
	AuditResult = manager.AuditResult

	// VulnerabilityCounts breaks audit findings down by severity.
	VulnerabilityCounts = manager.VulnerabilityCounts

	// Advisory describes a single audit finding.
	Advisory = manager.Advisory

	// ScriptResult records the outcome of a package.json script run.
	ScriptResult = manager.ScriptResult
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// BreakerClient wraps a Client with per-host circuit breakers.
	BreakerClient = client.BreakerClient

	// ClientOption configures a Client.
	ClientOption = client.Option

	// URLBuilder constructs URLs for registry resources.
	URLBuilder = client.URLBuilder
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

// Re-export errors
var (
	ErrNotFound    = client.ErrNotFound
	ErrUnavailable = client.ErrUnavailable
)

// Re-export constants
const (
	// DefaultRegistryURL is the public npm registry.
	DefaultRegistryURL = registry.DefaultURL

	// DefaultDownloadsURL is the npm download-counts API.
	DefaultDownloadsURL = registry.DefaultDownloadsURL

	// DefaultSearchSize is the number of results requested per search.
	DefaultSearchSize = registry.DefaultSearchSize

	// DefaultRecommendThreshold is the composite score a package must
	// reach to be recommended.
	DefaultRecommendThreshold = evaluate.DefaultRecommendThreshold
)

// License compatibility classes.
const (
	Compatible  = score.Compatible
	Problematic = score.Problematic
	Unknown     = score.Unknown
)

// Script statuses reported in workflow reports.
const (
	StatusSuccess = manager.StatusSuccess
	StatusFailed  = manager.StatusFailed
	StatusSkipped = manager.StatusSkipped
)

// Evaluator options.
var (
	// WithConcurrency caps how many packages are evaluated at once.
	WithConcurrency = evaluate.WithConcurrency

	// WithNow fixes the clock used for recency scoring.
	WithNow = evaluate.WithNow

	// WithEvaluatorLogger sets the evaluator's logger.
	WithEvaluatorLogger = evaluate.WithLogger

	// WithWorkflowLogger sets the workflow's step-transition logger.
	WithWorkflowLogger = manager.WithLogger
)

// Client options.
var (
	// WithTimeout sets the HTTP client timeout.
	WithTimeout = client.WithTimeout

	// WithMaxRetries sets the maximum number of retries.
	WithMaxRetries = client.WithMaxRetries

	// WithUserAgent sets the User-Agent header.
	WithUserAgent = client.WithUserAgent
)

// NewRegistry creates a registry client. Empty URLs fall back to the
// public npm endpoints; a nil getter falls back to DefaultClient().
func NewRegistry(baseURL, downloadsURL string, getter Getter) *Registry {
	return registry.New(baseURL, downloadsURL, getter)
}

// NewEvaluator creates an evaluator reading from source.
func NewEvaluator(source Source, opts ...EvaluatorOption) *Evaluator {
	return evaluate.NewEvaluator(source, opts...)
}

// NewDriver creates a package-manager driver rooted at the project
// directory dir. Supported managers: "npm", "pnpm".
func NewDriver(name, dir string) (Driver, error) {
	return manager.New(name, dir)
}

// NewWorkflow creates an install workflow around a driver.
func NewWorkflow(driver Driver, opts ...WorkflowOption) *Workflow {
	return manager.NewWorkflow(driver, opts...)
}

// SupportedManagers returns the package managers drivers exist for.
func SupportedManagers() []string {
	return manager.Supported()
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...ClientOption) *Client {
	return client.NewClient(opts...)
}

// NewBreakerClient wraps c with per-host circuit breakers, so an outage of
// one registry host does not take requests to the others down with it.
func NewBreakerClient(c *Client) *BreakerClient {
	return client.NewBreakerClient(c)
}

// LicenseOf builds a License from resolved SPDX expressions.
func LicenseOf(exprs ...string) License {
	return core.LicenseOf(exprs...)
}

// IsPURL reports whether candidate looks like a package URL.
func IsPURL(candidate string) bool {
	return core.IsPURL(candidate)
}

// NameFromPURL extracts the npm package name from a pkg:npm package URL.
func NameFromPURL(purl string) (string, error) {
	return core.NameFromPURL(purl)
}

// Score computes the full score record for a package at a given time.
func Score(meta *Metadata, weeklyDownloads int, now time.Time) ScoreRecord {
	return score.Compute(meta, weeklyDownloads, now)
}

// ClassifyLicense classifies a resolved license expression against the
// permissive allowlist.
func ClassifyLicense(license string) Compatibility {
	return score.Classify(license)
}

// Rank orders evaluations by composite score, best first, without
// mutating the input.
func Rank(evals []Evaluation) []Evaluation {
	return evaluate.Rank(evals)
}

// Recommend returns the best-ranked candidate whose composite score
// reaches the default threshold.
func Recommend(evals []Evaluation) (Evaluation, bool) {
	return evaluate.Recommend(evals)
}

// RecommendAbove returns the best-ranked candidate whose composite score
// reaches threshold.
func RecommendAbove(evals []Evaluation, threshold float64) (Evaluation, bool) {
	return evaluate.RecommendAbove(evals, threshold)
}

// RankHits reorders search hits by fuzzy relevance to the query.
func RankHits(query string, hits []SearchHit) []SearchHit {
	return registry.RankHits(query, hits)
}

// Assistant bundles the registry client, evaluator, and install workflow
// behind one entry point, assembled from a config.
type Assistant struct {
	config    *config.Config
	registry  *Registry
	evaluator *Evaluator
	workflow  *Workflow
}

// FromConfig assembles an assistant from cfg. A nil cfg uses defaults.
func FromConfig(cfg *config.Config) (*Assistant, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	opts := []ClientOption{
		client.WithTimeout(cfg.Client.Timeout),
		client.WithMaxRetries(cfg.Client.MaxRetries),
	}
	if cfg.Client.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(cfg.Client.UserAgent))
	}
	breaker := client.NewBreakerClient(client.NewClient(opts...))

	reg := registry.New(cfg.Registry.BaseURL, cfg.Registry.DownloadsURL, breaker)
	evaluator := evaluate.NewEvaluator(reg,
		evaluate.WithConcurrency(cfg.Evaluate.Concurrency))

	driver, err := manager.New(cfg.Manager.Name, cfg.Manager.Dir)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		config:    cfg,
		registry:  reg,
		evaluator: evaluator,
		workflow:  manager.NewWorkflow(driver),
	}, nil
}

// Registry returns the assistant's registry client.
func (a *Assistant) Registry() *Registry {
	return a.registry
}

// Search queries the registry, attaches weekly download counts, and ranks
// the hits by relevance to the query.
func (a *Assistant) Search(ctx context.Context, query string) ([]SearchHit, error) {
	hits, err := a.registry.Search(ctx, query, a.config.Registry.SearchSize)
	if err != nil {
		return nil, err
	}
	a.registry.EnrichDownloads(ctx, hits)
	return registry.RankHits(query, hits), nil
}

// Evaluate scores each candidate, given as a package name or a pkg:npm
// package URL. Results keep the input order; per-package failures come
// back as error records, never as a batch failure.
func (a *Assistant) Evaluate(ctx context.Context, candidates []string) ([]Evaluation, error) {
	return a.evaluator.Evaluate(ctx, candidates)
}

// Rank orders evaluations by composite score, best first.
func (a *Assistant) Rank(evals []Evaluation) []Evaluation {
	return evaluate.Rank(evals)
}

// Recommend returns the best-ranked candidate whose composite score
// reaches the configured threshold.
func (a *Assistant) Recommend(evals []Evaluation) (Evaluation, bool) {
	return evaluate.RecommendAbove(evals, a.config.Evaluate.RecommendThreshold)
}

// PackageURLs returns the presentation URLs for a package: its registry
// page, tarball download, documentation, and pkg:npm package URL. Keys
// with no known URL are omitted.
func (a *Assistant) PackageURLs(name, version string) map[string]string {
	return client.BuildURLs(a.registry.URLs(), name, version)
}

// Install runs the install workflow for pkg: install, audit, then the
// test and lint scripts. It refuses to execute anything until the caller
// passes confirmed=true. An empty workspace falls back to the configured
// one.
func (a *Assistant) Install(ctx context.Context, pkg, workspace string, confirmed bool) (*Report, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	if workspace == "" {
		workspace = a.config.Manager.Workspace
	}
	return a.workflow.Run(ctx, pkg, workspace), nil
}
