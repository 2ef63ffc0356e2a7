// Package tsconfig checks the TypeScript configuration a production build
// compiles with.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// Warning texts other tools match on
const (
	WarnNoExtends = "Production config does not extend base configuration"
	WarnNoEmit    = "noEmit should be true in production config"
)

// DefaultRequiredExcludes are the test-file globs tsconfig.build.json must
// exclude, compared literally
var DefaultRequiredExcludes = []string{
	"**/*.test.ts",
	"**/*.test.tsx",
	"**/*.spec.ts",
	"**/*.spec.tsx",
	"**/__tests__/**",
	"**/tests/**",
}

// DefaultProductionDirs are source directories that must never be excluded
var DefaultProductionDirs = []string{"src", "app", "pages", "components", "lib"}

// Options configures the validator
type Options struct {
	BaseFile         string
	ProductionFile   string
	RequiredExcludes []string
	ProductionDirs   []string
}

// DefaultOptions validates tsconfig.build.json against tsconfig.json
func DefaultOptions() Options {
	return Options{
		BaseFile:         "tsconfig.json",
		ProductionFile:   "tsconfig.build.json",
		RequiredExcludes: DefaultRequiredExcludes,
		ProductionDirs:   DefaultProductionDirs,
	}
}

// Config is the subset of a tsconfig file the checks look at
type Config struct {
	Extends         json.RawMessage `json:"extends,omitempty"`
	CompilerOptions map[string]any  `json:"compilerOptions,omitempty"`
	Include         []string        `json:"include,omitempty"`
	Exclude         []string        `json:"exclude,omitempty"`
}

// ExtendsTargets returns the extends reference(s); both the string and the
// array form are accepted
func (c *Config) ExtendsTargets() []string {
	if len(c.Extends) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(c.Extends, &single); err == nil {
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(c.Extends, &many); err == nil {
		return many
	}
	return nil
}

// BoolOption reports whether compilerOptions[name] is set, and its value
// when it is a boolean
func (c *Config) BoolOption(name string) (value bool, set bool) {
	raw, ok := c.CompilerOptions[name]
	if !ok {
		return false, false
	}
	b, isBool := raw.(bool)
	return isBool && b, true
}

// Load reads and parses one tsconfig file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the production and base configs under dir. Missing or
// unparsable files make the result invalid; everything else is a warning
// or suggestion.
func Validate(dir string, opts Options) domain.ValidationResult {
	opts = withDefaults(opts)
	result := domain.NewValidationResult()

	prod := loadInto(result, dir, opts.ProductionFile, "Production")
	base := loadInto(result, dir, opts.BaseFile, "Base")

	if prod != nil {
		checkProduction(result, prod, opts)
	}
	if base != nil {
		checkBase(result, base)
	}
	return *result
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.BaseFile == "" {
		opts.BaseFile = def.BaseFile
	}
	if opts.ProductionFile == "" {
		opts.ProductionFile = def.ProductionFile
	}
	if opts.RequiredExcludes == nil {
		opts.RequiredExcludes = def.RequiredExcludes
	}
	if opts.ProductionDirs == nil {
		opts.ProductionDirs = def.ProductionDirs
	}
	return opts
}

func loadInto(result *domain.ValidationResult, dir, name, label string) *Config {
	cfg, err := Load(filepath.Join(dir, name))
	switch {
	case err == nil:
		return cfg
	case os.IsNotExist(err):
		result.AddError(fmt.Sprintf("%s TypeScript config not found: %s", label, name))
	default:
		result.AddError(fmt.Sprintf("%s TypeScript config %s is not valid JSON: %v", label, name, err))
	}
	return nil
}

func checkProduction(result *domain.ValidationResult, cfg *Config, opts Options) {
	if !extendsBase(cfg, opts.BaseFile) {
		result.AddWarning(WarnNoExtends)
	}

	for _, pattern := range opts.RequiredExcludes {
		if !containsString(cfg.Exclude, pattern) {
			result.AddWarning(fmt.Sprintf("Missing exclude pattern: %s", pattern))
		}
	}

	if noEmit, _ := cfg.BoolOption("noEmit"); !noEmit {
		result.AddWarning(WarnNoEmit)
	}

	for _, pattern := range cfg.Exclude {
		if dir := excludedProductionDir(pattern, opts.ProductionDirs); dir != "" {
			result.AddWarning(fmt.Sprintf("Exclude pattern %q may exclude production code in %s/", pattern, dir))
		}
	}
}

func checkBase(result *domain.ValidationResult, cfg *Config) {
	if strict, _ := cfg.BoolOption("strict"); !strict {
		result.AddWarning("Base config does not enable strict mode")
	}
	if _, set := cfg.BoolOption("skipLibCheck"); !set {
		result.AddSuggestion("Consider enabling skipLibCheck to speed up type checking")
	}
}

func extendsBase(cfg *Config, baseFile string) bool {
	for _, target := range cfg.ExtendsTargets() {
		if strings.Contains(target, baseFile) {
			return true
		}
	}
	return false
}

// excludedProductionDir returns the production directory an exclude
// pattern names when the pattern is not about tests
func excludedProductionDir(pattern string, dirs []string) string {
	lower := strings.ToLower(pattern)
	if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
		return ""
	}
	for _, segment := range strings.Split(strings.ReplaceAll(lower, "\\", "/"), "/") {
		for _, dir := range dirs {
			if segment == dir {
				return dir
			}
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
