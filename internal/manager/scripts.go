package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// hasScript reports whether the project's package.json declares the named
// script. A missing or unreadable manifest counts as no script.
func hasScript(dir, name string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}

	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false
	}

	_, ok := manifest.Scripts[name]
	return ok
}

// runScript runs `<program> run <script>` in dir when package.json declares
// the script, and reports it skipped otherwise.
func runScript(ctx context.Context, dir, program, script string) ScriptResult {
	if !hasScript(dir, script) {
		return ScriptResult{
			Script: script,
			Status: StatusSkipped,
			Reason: fmt.Sprintf("no %q script in package.json", script),
		}
	}

	output, err := runCommand(ctx, dir, program, "run", script)
	if err != nil {
		return ScriptResult{
			Script: script,
			Status: StatusFailed,
			Reason: err.Error(),
			Output: output,
		}
	}

	return ScriptResult{
		Script: script,
		Status: StatusSuccess,
		Output: output,
	}
}
