// Package evaluate scores batches of package candidates concurrently
// and ranks the results.
package evaluate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkgscout/discovery/internal/core"
	"github.com/pkgscout/discovery/internal/score"
)

// ErrNoCandidates is returned when Evaluate is called with an empty
// candidate list.
var ErrNoCandidates = errors.New("no candidates to evaluate")

const defaultConcurrency = 15

// Source supplies package facts. FetchMetadata may fail;
// WeeklyDownloads never does, degrading to 0 instead.
type Source interface {
	FetchMetadata(ctx context.Context, name string) (*core.Metadata, error)
	WeeklyDownloads(ctx context.Context, name string) int
}

// Evaluation is the scored result for one candidate. A fetch failure
// leaves only Name, Error, and a zeroed Score.
type Evaluation struct {
	Name                 string              `json:"name"`
	Version              string              `json:"version,omitempty"`
	Description          string              `json:"description,omitempty"`
	Downloads            int                 `json:"downloads,omitempty"`
	LastPublish          string              `json:"lastPublish,omitempty"`
	Deprecated           bool                `json:"deprecated,omitempty"`
	License              string              `json:"license,omitempty"`
	LicenseCompatibility score.Compatibility `json:"licenseCompatibility,omitempty"`
	Repository           string              `json:"repository,omitempty"`
	Homepage             string              `json:"homepage,omitempty"`
	HasTypes             bool                `json:"hasTypes,omitempty"`
	Keywords             []string            `json:"keywords,omitempty"`
	Maintainers          int                 `json:"maintainers,omitempty"`
	Score                score.Record        `json:"score"`
	Error                string              `json:"error,omitempty"`
}

// Evaluator fans package evaluations out against a Source with bounded
// concurrency.
type Evaluator struct {
	source      Source
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithConcurrency bounds how many candidates are evaluated at once.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithNow fixes the clock used for recency scoring.
func WithNow(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger routes evaluation diagnostics to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator returns an Evaluator backed by source.
func NewEvaluator(source Source, opts ...Option) *Evaluator {
	e := &Evaluator{
		source:      source,
		concurrency: defaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores every candidate and returns one Evaluation per
// input, in input order. Candidates are registry names or pkg:npm
// purls. Per-candidate failures become error records; the batch
// itself only fails when candidates is empty.
func (e *Evaluator) Evaluate(ctx context.Context, candidates []string) ([]Evaluation, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	// Each worker writes only its own slot; no mutex needed.
	results := make([]Evaluation, len(candidates))
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = errorRecord(candidate, ctx.Err())
				return
			}

			results[i] = e.evaluateOne(ctx, candidate)
		}(i, candidate)
	}

	wg.Wait()
	return results, nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, candidate string) Evaluation {
	name := candidate
	if core.IsPURL(candidate) {
		resolved, err := core.NameFromPURL(candidate)
		if err != nil {
			e.logger.Warn("evaluate: bad candidate", "candidate", candidate, "error", err)
			return errorRecord(candidate, err)
		}
		name = resolved
	}

	// The download count arrives on its own channel while the metadata
	// fetch blocks; both are joined before scoring.
	downloadsCh := make(chan int, 1)
	go func() {
		downloadsCh <- e.source.WeeklyDownloads(ctx, name)
	}()

	meta, err := e.source.FetchMetadata(ctx, name)
	downloads := <-downloadsCh
	if err != nil {
		e.logger.Warn("evaluate: fetch failed", "package", name, "error", err)
		return errorRecord(name, err)
	}

	return e.record(meta, downloads)
}

func (e *Evaluator) record(meta *core.Metadata, downloads int) Evaluation {
	license := meta.License.Resolve()
	if meta.License.Defined() && !score.ValidSPDX(license) {
		e.logger.Debug("evaluate: unrecognized license expression",
			"package", meta.Name, "license", license)
	}

	ev := Evaluation{
		Name:                 meta.Name,
		Version:              meta.Version,
		Description:          meta.Description,
		Downloads:            downloads,
		Deprecated:           meta.IsDeprecated(),
		License:              license,
		LicenseCompatibility: score.Classify(license),
		Repository:           meta.Repository,
		Homepage:             meta.Homepage,
		HasTypes:             meta.HasTypes,
		Keywords:             meta.Keywords,
		Maintainers:          len(meta.Maintainers),
		Score:                score.Compute(meta, downloads, e.now()),
	}
	if last := meta.LastActivity(); !last.IsZero() {
		ev.LastPublish = last.Format(time.RFC3339)
	}
	return ev
}

func errorRecord(name string, err error) Evaluation {
	return Evaluation{Name: name, Error: err.Error()}
}
