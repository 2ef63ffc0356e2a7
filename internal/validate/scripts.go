package validate

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
)

// DefaultRequiredScripts are the package.json scripts a deployable app needs
var DefaultRequiredScripts = []string{"build", "start"}

type manifestScripts struct {
	Scripts map[string]string `json:"scripts"`
}

// CheckPackageScripts verifies that package.json under dir parses and
// defines every required script. A nil or empty required list falls back
// to DefaultRequiredScripts.
func CheckPackageScripts(dir string, required []string) error {
	if len(required) == 0 {
		required = DefaultRequiredScripts
	}

	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bmerrors.NewPackageManifestMissingError(path)
		}
		return bmerrors.Wrap(bmerrors.ErrCodeFileReadFailed, "failed to read package manifest", err)
	}

	var manifest manifestScripts
	if err := json.Unmarshal(data, &manifest); err != nil {
		return bmerrors.NewPackageManifestInvalidError(path, err)
	}

	var missing []string
	for _, name := range required {
		if _, ok := manifest.Scripts[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return bmerrors.NewScriptsMissingError(missing)
	}
	return nil
}
