package ux

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DiscoverProjectRoot searches for the nearest directory holding a
// package.json. Priority: current dir -> parent dirs (stopping at the git
// root) -> git root -> current dir.
func DiscoverProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return discoverProjectRootFrom(cwd), nil
}

func discoverProjectRootFrom(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			return dir
		}

		// Don't leave the repository
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	if gitRoot, err := getGitRoot(start); err == nil {
		if _, err := os.Stat(filepath.Join(gitRoot, "package.json")); err == nil {
			return gitRoot
		}
	}

	return start
}

// getGitRoot returns the git repository root directory
func getGitRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
