package manager

import "context"

func init() {
	Register("npm", func(dir string) Driver {
		return &npmDriver{dir: dir}
	})
}

type npmDriver struct {
	dir string
}

func (d *npmDriver) Manager() string { return "npm" }

// installArgs builds the npm install argument list. Workspace targeting
// uses npm's --workspace flag.
func (d *npmDriver) installArgs(pkg, workspace string) []string {
	args := []string{"install", pkg}
	if workspace != "" {
		args = append(args, "--workspace="+workspace)
	}
	return args
}

func (d *npmDriver) Install(ctx context.Context, pkg, workspace string) InstallResult {
	return runInstall(ctx, d.dir, "npm", d.installArgs(pkg, workspace))
}

func (d *npmDriver) Audit(ctx context.Context) (*AuditResult, error) {
	return runAudit(ctx, d.dir, "npm", []string{"audit", "--json"})
}

func (d *npmDriver) RunTests(ctx context.Context) ScriptResult {
	return runScript(ctx, d.dir, "npm", "test")
}

func (d *npmDriver) RunLint(ctx context.Context) ScriptResult {
	return runScript(ctx, d.dir, "npm", "lint")
}
