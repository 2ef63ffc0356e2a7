// Package detect inspects the process environment to describe where a
// build is running and which deployment phase it targets.
package detect

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// Feature flags that select the deployment phase
const (
	FlagCMS    = "NEXT_PUBLIC_ENABLE_CMS"
	FlagAuth   = "NEXT_PUBLIC_ENABLE_AUTH"
	FlagSearch = "NEXT_PUBLIC_ENABLE_SEARCH"
	FlagAI     = "NEXT_PUBLIC_ENABLE_AI"
	FlagMedia  = "NEXT_PUBLIC_ENABLE_MEDIA"
)

// FeatureFlags lists every phase-selecting flag
var FeatureFlags = []string{FlagCMS, FlagAuth, FlagSearch, FlagAI, FlagMedia}

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// CIInfo holds CI/CD environment information
type CIInfo struct {
	Detected bool   `json:"detected"`
	Name     string `json:"name,omitempty"` // "github", "gitlab", "vercel", "generic", etc.
}

// Detector reads the environment through an injectable lookup
type Detector struct {
	Lookup LookupFunc
	GOOS   string
}

// NewDetector creates a detector over the process environment
func NewDetector() *Detector {
	return &Detector{Lookup: os.LookupEnv, GOOS: runtime.GOOS}
}

// Environment returns the build environment for a record
func (d *Detector) Environment() domain.Environment {
	return domain.Environment{
		Platform: platformName(d.GOOS),
		CI:       d.CI().Detected,
		Vercel:   d.isSet("VERCEL"),
	}
}

// CI detects the CI/CD provider
func (d *Detector) CI() CIInfo {
	ci := CIInfo{}

	// Ordered so the most specific provider wins
	ciChecks := []struct {
		envVar string
		name   string
	}{
		{"GITHUB_ACTIONS", "github"},
		{"GITLAB_CI", "gitlab"},
		{"JENKINS_HOME", "jenkins"},
		{"CIRCLECI", "circleci"},
		{"TRAVIS", "travis"},
		{"BUILDKITE", "buildkite"},
		{"VERCEL", "vercel"},
	}

	for _, check := range ciChecks {
		if d.isSet(check.envVar) {
			ci.Detected = true
			ci.Name = check.name
			return ci
		}
	}

	if d.isSet("CI") {
		ci.Detected = true
		ci.Name = "generic"
	}

	return ci
}

// Flags returns the enabled state of every feature flag that is set
func (d *Detector) Flags() map[string]bool {
	flags := make(map[string]bool)
	for _, name := range FeatureFlags {
		v, ok := d.lookup(name)
		if !ok || v == "" {
			continue
		}
		flags[name] = v == "true"
	}
	return flags
}

// Phase infers the deployment phase from the feature flags
func (d *Detector) Phase() domain.Phase {
	return InferPhase(d.Flags())
}

// InferPhase maps feature flags to a phase: full when CMS or auth is
// enabled, simple when flags are set but neither is enabled, unknown
// when no flag is set.
func InferPhase(flags map[string]bool) domain.Phase {
	if len(flags) == 0 {
		return domain.PhaseUnknown
	}
	if flags[FlagCMS] || flags[FlagAuth] {
		return domain.PhaseFull
	}
	return domain.PhaseSimple
}

// Summary returns a human-readable summary of the detected environment
func (d *Detector) Summary() string {
	var sb strings.Builder

	env := d.Environment()
	fmt.Fprintf(&sb, "Platform: %s\n", env.Platform)
	if ci := d.CI(); ci.Detected {
		fmt.Fprintf(&sb, "CI Environment: %s\n", ci.Name)
	}
	fmt.Fprintf(&sb, "Phase: %s\n", d.Phase())

	return sb.String()
}

func (d *Detector) lookup(key string) (string, bool) {
	if d.Lookup == nil {
		return os.LookupEnv(key)
	}
	return d.Lookup(key)
}

func (d *Detector) isSet(key string) bool {
	v, ok := d.lookup(key)
	return ok && v != "" && v != "0" && v != "false"
}

// platformName uses the names Node.js reports for process.platform so
// history files stay comparable.
func platformName(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "":
		return runtime.GOOS
	default:
		return goos
	}
}
