package manager

import "context"

func init() {
	Register("pnpm", func(dir string) Driver {
		return &pnpmDriver{dir: dir}
	})
}

type pnpmDriver struct {
	dir string
}

func (d *pnpmDriver) Manager() string { return "pnpm" }

// installArgs builds the pnpm add argument list. Workspace targeting uses
// pnpm's --filter selector, which precedes the subcommand.
func (d *pnpmDriver) installArgs(pkg, workspace string) []string {
	if workspace != "" {
		return []string{"--filter", workspace, "add", pkg}
	}
	return []string{"add", pkg}
}

func (d *pnpmDriver) Install(ctx context.Context, pkg, workspace string) InstallResult {
	return runInstall(ctx, d.dir, "pnpm", d.installArgs(pkg, workspace))
}

func (d *pnpmDriver) Audit(ctx context.Context) (*AuditResult, error) {
	return runAudit(ctx, d.dir, "pnpm", []string{"audit", "--json"})
}

func (d *pnpmDriver) RunTests(ctx context.Context) ScriptResult {
	return runScript(ctx, d.dir, "pnpm", "test")
}

func (d *pnpmDriver) RunLint(ctx context.Context) ScriptResult {
	return runScript(ctx, d.dir, "pnpm", "lint")
}
