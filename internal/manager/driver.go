// Package manager runs package-manager commands against a local project:
// installing a dependency, auditing the dependency tree, and running the
// project's test and lint scripts. Drivers are registered per manager name
// and selected by explicit configuration.
package manager

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// Script statuses reported by RunTests and RunLint.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// InstallResult records the outcome of a single install command.
type InstallResult struct {
	Success bool   `json:"success"`
	Command string `json:"command"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ScriptResult records the outcome of a package.json script run.
// Skipped results carry the reason the script never ran.
type ScriptResult struct {
	Script string `json:"script"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Output string `json:"output,omitempty"`
}

// Driver is the interface implemented by package-manager drivers.
type Driver interface {
	// Manager returns the driver's manager name (e.g., "npm", "pnpm").
	Manager() string

	// Install adds a package to the project, optionally targeting a workspace.
	Install(ctx context.Context, pkg, workspace string) InstallResult

	// Audit runs the manager's security audit and parses its JSON report.
	Audit(ctx context.Context) (*AuditResult, error)

	// RunTests runs the project's test script, if package.json declares one.
	RunTests(ctx context.Context) ScriptResult

	// RunLint runs the project's lint script, if package.json declares one.
	RunLint(ctx context.Context) ScriptResult
}

// Factory creates a driver rooted at a project directory.
type Factory func(dir string) Driver

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a driver factory under a manager name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// New creates a driver for the given manager rooted at dir.
func New(manager, dir string) (Driver, error) {
	mu.RLock()
	factory, ok := factories[manager]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown package manager: %s", manager)
	}

	return factory(dir), nil
}

// Supported returns all registered manager names, sorted.
func Supported() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runCommand executes program with args in dir and returns its combined
// output. The error is non-nil for start failures and nonzero exits alike.
func runCommand(ctx context.Context, dir, program string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runInstall executes an install command and folds the outcome into an
// InstallResult instead of returning an error.
func runInstall(ctx context.Context, dir, program string, args []string) InstallResult {
	command := program + " " + strings.Join(args, " ")
	output, err := runCommand(ctx, dir, program, args...)
	if err != nil {
		return InstallResult{
			Command: command,
			Output:  output,
			Error:   fmt.Sprintf("%s: %v", command, err),
		}
	}

	return InstallResult{
		Success: true,
		Command: command,
		Output:  output,
	}
}
