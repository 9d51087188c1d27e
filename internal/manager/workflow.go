package manager

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Report collects every step outcome of a single workflow run.
type Report struct {
	Package    string        `json:"package"`
	Workspace  string        `json:"workspace,omitempty"`
	Manager    string        `json:"manager"`
	Install    InstallResult `json:"install"`
	Audit      *AuditResult  `json:"audit,omitempty"`
	AuditError string        `json:"auditError,omitempty"`
	Tests      *ScriptResult `json:"tests,omitempty"`
	Lint       *ScriptResult `json:"lint,omitempty"`
}

// Workflow runs the install pipeline against a project: install the
// package, audit the dependency tree, then run the test and lint scripts.
type Workflow struct {
	driver Driver
	logger *slog.Logger
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithLogger sets the logger used for step transitions.
func WithLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorkflow creates a workflow around a driver.
func NewWorkflow(driver Driver, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		driver: driver,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run installs pkg, audits the resulting tree, and runs the project's test
// and lint scripts. A failed install stops the pipeline; audit and script
// failures are recorded in the report and never roll the install back.
func (w *Workflow) Run(ctx context.Context, pkg, workspace string) *Report {
	report := &Report{
		Package:   pkg,
		Workspace: workspace,
		Manager:   w.driver.Manager(),
	}

	w.logger.Info("workflow: installing",
		"manager", report.Manager, "package", pkg, "workspace", workspace)
	report.Install = w.driver.Install(ctx, pkg, workspace)
	if !report.Install.Success {
		w.logger.Warn("workflow: install failed",
			"package", pkg, "error", report.Install.Error)
		return report
	}

	w.logger.Info("workflow: auditing", "manager", report.Manager)
	audit, err := w.driver.Audit(ctx)
	if err != nil {
		w.logger.Warn("workflow: audit failed", "error", err)
		report.AuditError = err.Error()
	} else {
		report.Audit = audit
	}

	// The test and lint scripts are independent; run them concurrently.
	var tests, lint ScriptResult
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tests = w.driver.RunTests(gCtx)
		return nil
	})
	g.Go(func() error {
		lint = w.driver.RunLint(gCtx)
		return nil
	})
	_ = g.Wait() // The workers never return an error.
	report.Tests = &tests
	report.Lint = &lint

	w.logger.Info("workflow: done",
		"package", pkg, "tests", tests.Status, "lint", lint.Status)
	return report
}
