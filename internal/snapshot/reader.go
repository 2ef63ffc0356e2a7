// Package snapshot fingerprints the configuration files and environment
// a build runs with.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// Files names the tracked configuration files relative to the project root
type Files struct {
	PackageJSON   string
	TSConfig      string
	TSConfigBuild string
	// FrameworkConfigs are candidates; the first one present is hashed
	FrameworkConfigs []string
}

// DefaultFiles returns the files a Next.js project is fingerprinted by
func DefaultFiles() Files {
	return Files{
		PackageJSON:      "package.json",
		TSConfig:         "tsconfig.json",
		TSConfigBuild:    "tsconfig.build.json",
		FrameworkConfigs: []string{"next.config.js", "next.config.mjs", "next.config.ts"},
	}
}

// DefaultEnvVars is the allow-list of environment variables whose values
// take part in the fingerprint, in serialization order
var DefaultEnvVars = []string{
	"NODE_ENV",
	"NEXT_PUBLIC_BASE_URL",
	"NEXT_PUBLIC_SITE_NAME",
	"NEXT_PUBLIC_ENABLE_CMS",
	"NEXT_PUBLIC_ENABLE_AUTH",
	"NEXT_PUBLIC_ENABLE_SEARCH",
	"NEXT_PUBLIC_ENABLE_AI",
	"NEXT_PUBLIC_ENABLE_MEDIA",
}

// Reader builds ConfigSnapshots for one project directory
type Reader struct {
	Dir     string
	Files   Files
	EnvVars []string
	Getenv  func(key string) (string, bool)
	Now     func() time.Time
}

// NewReader creates a reader with the default file set, allow-list,
// process environment and wall clock
func NewReader(dir string) *Reader {
	return &Reader{
		Dir:     dir,
		Files:   DefaultFiles(),
		EnvVars: DefaultEnvVars,
		Getenv:  os.LookupEnv,
		Now:     time.Now,
	}
}

// Read fingerprints the current configuration. Files that are absent or
// unreadable get a nil hash.
func (r *Reader) Read() domain.ConfigSnapshot {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	pkg, pkgOK := r.readFile(r.Files.PackageJSON)

	snap := domain.ConfigSnapshot{
		Timestamp:           now().UTC(),
		TSConfigHash:        r.hashFile(r.Files.TSConfig),
		TSConfigBuildHash:   r.hashFile(r.Files.TSConfigBuild),
		FrameworkConfigHash: r.hashFrameworkConfig(),
		EnvVarsHash:         hashPtr(r.envJSON()),
	}
	if pkgOK {
		snap.PackageJSONHash = hashPtr(pkg)
		snap.DependenciesHash = dependenciesHash(pkg)
	}
	return snap
}

// FrameworkConfigPath returns the first framework config present, or ""
func (r *Reader) FrameworkConfigPath() string {
	for _, name := range r.Files.FrameworkConfigs {
		if _, err := os.Stat(r.path(name)); err == nil {
			return name
		}
	}
	return ""
}

func (r *Reader) hashFrameworkConfig() *string {
	name := r.FrameworkConfigPath()
	if name == "" {
		return nil
	}
	return r.hashFile(name)
}

func (r *Reader) hashFile(name string) *string {
	content, ok := r.readFile(name)
	if !ok {
		return nil
	}
	return hashPtr(content)
}

func (r *Reader) readFile(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (r *Reader) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// envJSON serializes the allow-list in order, mapping unset variables to null
func (r *Reader) envJSON() string {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.EnvVars {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		if v, ok := getenv(key); ok {
			val, _ := json.Marshal(v)
			buf.Write(val)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.String()
}

type manifestDependencies struct {
	Dependencies    map[string]any `json:"dependencies"`
	DevDependencies map[string]any `json:"devDependencies"`
}

func dependenciesHash(pkg string) *string {
	var deps manifestDependencies
	if err := json.Unmarshal([]byte(pkg), &deps); err != nil {
		return nil
	}
	data, err := json.Marshal(deps)
	if err != nil {
		return nil
	}
	return hashPtr(string(data))
}
