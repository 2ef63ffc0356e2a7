package health

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/exec"
)

var versionRe = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

// ToolChecker checks that a build tool is installed by running its
// version command.
type ToolChecker struct {
	name     string
	cmd      []string
	minMajor int
	optional bool
	hint     string

	runner   exec.Runner
	lookPath func(string) (string, error)
}

// NewToolChecker creates a checker that runs cmd and parses a version from
// its output. A version below minMajor is degraded; zero disables the check.
func NewToolChecker(name string, cmd []string, minMajor int, runner exec.Runner) *ToolChecker {
	if runner == nil {
		runner = exec.NewLocalRunner()
	}
	return &ToolChecker{
		name:     name,
		cmd:      cmd,
		minMajor: minMajor,
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

// NewNodeChecker checks for Node.js 18 or later.
func NewNodeChecker(runner exec.Runner) *ToolChecker {
	c := NewToolChecker("node-binary", []string{"node", "--version"}, 18, runner)
	c.hint = "Install Node.js 18 or later from https://nodejs.org"
	return c
}

// NewNPMChecker checks for npm.
func NewNPMChecker(runner exec.Runner) *ToolChecker {
	c := NewToolChecker("npm-binary", []string{"npm", "--version"}, 0, runner)
	c.hint = "npm ships with Node.js; reinstall Node.js"
	return c
}

// NewGitChecker checks for Git 2.0 or later.
func NewGitChecker(runner exec.Runner) *ToolChecker {
	c := NewToolChecker("git-binary", []string{"git", "--version"}, 2, runner)
	c.hint = "Install Git from https://git-scm.com/downloads"
	return c
}

// NewTSCChecker checks for the project's TypeScript compiler, preferring
// node_modules/.bin/tsc under dir. A missing compiler is degraded.
func NewTSCChecker(dir string, runner exec.Runner) *ToolChecker {
	cmd := []string{"npx", "--no-install", "tsc", "--version"}
	local := filepath.Join(dir, "node_modules", ".bin", "tsc")
	if _, err := os.Stat(local); err == nil {
		cmd = []string{local, "--version"}
	}

	c := NewToolChecker("tsc-binary", cmd, 0, runner)
	c.optional = true
	c.hint = "Run npm install to install typescript"
	return c
}

// Name returns the name of this health check.
func (c *ToolChecker) Name() string {
	return c.name
}

// Check verifies the tool is installed and accessible.
// Returns:
//   - Healthy if the tool runs and meets the minimum version
//   - Degraded if the version is too old, cannot be parsed, or an
//     optional tool is missing
//   - Unhealthy if a required tool is missing or fails to run
func (c *ToolChecker) Check(ctx context.Context) *Result {
	missing := Unhealthy
	if c.optional {
		missing = Degraded
	}

	path, err := c.lookPath(c.cmd[0])
	if err != nil {
		return c.withHint(missing(c.cmd[0]+" command not found in PATH").
			WithDetail("error", err.Error()))
	}

	res := c.runner.Run(ctx, exec.Step{ID: c.name, Cmd: c.cmd})
	if !res.Succeeded() {
		r := missing("failed to execute "+c.cmd[0]).
			WithDetail("exit_code", res.ExitCode).
			WithDetail("output", strings.TrimSpace(res.Output()))
		if res.Error != nil {
			r.WithDetail("error", res.Error.Error())
		}
		return c.withHint(r)
	}

	version, major := parseVersion(res.Stdout)
	if version == "" {
		return Degraded(c.cmd[0]+" installed but version cannot be parsed").
			WithDetail("path", path).
			WithDetail("version_output", strings.TrimSpace(res.Stdout))
	}

	if c.minMajor > 0 && major < c.minMajor {
		return c.withHint(Degraded(c.cmd[0]+" version is older than "+strconv.Itoa(c.minMajor)).
			WithDetail("path", path).
			WithDetail("version", version))
	}

	return Healthy(c.cmd[0]+" is installed and accessible").
		WithDetail("path", path).
		WithDetail("version", version)
}

func (c *ToolChecker) withHint(r *Result) *Result {
	if c.hint != "" {
		r.WithDetail("suggestion", c.hint)
	}
	return r
}

// parseVersion extracts the first X.Y[.Z] version from tool output, such as
// "v20.11.0", "10.2.4", "git version 2.42.0.windows.1" or "Version 5.4.2".
func parseVersion(output string) (string, int) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return "", 0
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0
	}
	version := m[1] + "." + m[2]
	if m[3] != "" {
		version += "." + m[3]
	}
	return version, major
}

// DefaultCheckers returns the toolchain probes for a project directory.
func DefaultCheckers(dir string, runner exec.Runner) []Checker {
	return []Checker{
		NewNodeChecker(runner),
		NewNPMChecker(runner),
		NewGitChecker(runner),
		NewTSCChecker(dir, runner),
	}
}
