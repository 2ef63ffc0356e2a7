package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Fix brings the production config in line with the checks Validate
// warns about: it adds the extends reference, the missing test excludes
// and noEmit. A missing production config is created. It returns a
// description of every change applied.
func Fix(dir string, opts Options) ([]string, error) {
	opts = withDefaults(opts)
	path := filepath.Join(dir, opts.ProductionFile)

	doc := map[string]any{}
	var applied []string

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("refusing to rewrite %s: %w", opts.ProductionFile, err)
		}
	case os.IsNotExist(err):
		applied = append(applied, fmt.Sprintf("created %s", opts.ProductionFile))
	default:
		return nil, fmt.Errorf("read %s: %w", opts.ProductionFile, err)
	}

	var cfg Config
	if raw, merr := json.Marshal(doc); merr == nil {
		_ = json.Unmarshal(raw, &cfg)
	}

	if !extendsBase(&cfg, opts.BaseFile) {
		doc["extends"] = "./" + opts.BaseFile
		applied = append(applied, fmt.Sprintf("set extends to ./%s", opts.BaseFile))
	}

	compilerOptions, _ := doc["compilerOptions"].(map[string]any)
	if compilerOptions == nil {
		compilerOptions = map[string]any{}
	}
	if noEmit, _ := cfg.BoolOption("noEmit"); !noEmit {
		compilerOptions["noEmit"] = true
		applied = append(applied, "set compilerOptions.noEmit to true")
	}
	doc["compilerOptions"] = compilerOptions

	exclude := append([]string{}, cfg.Exclude...)
	for _, pattern := range opts.RequiredExcludes {
		if !containsString(exclude, pattern) {
			exclude = append(exclude, pattern)
			applied = append(applied, fmt.Sprintf("added exclude pattern %s", pattern))
		}
	}
	doc["exclude"] = exclude

	if len(applied) == 0 {
		return nil, nil
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.ProductionFile, err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", opts.ProductionFile, err)
	}
	return applied, nil
}
