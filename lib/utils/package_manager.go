package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var lockfiles = []struct {
	name    string
	manager string
}{
	{"bun.lock", "bun"},
	{"bun.lockb", "bun"},
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
}

// DetectPackageManager names the package manager that installs rootDir's
// node_modules: the packageManager field of package.json, then the
// lockfile present, then npm. A missing package.json only skips the first
// step.
func DetectPackageManager(rootDir string) (string, error) {
	pkg, err := ReadPackageJSON(rootDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return "", err
	default:
		if before, _, found := strings.Cut(pkg.PackageManager, "@"); found && before != "" {
			return before, nil
		}
	}

	for _, lock := range lockfiles {
		if _, err := os.Stat(filepath.Join(rootDir, lock.name)); err == nil {
			return lock.manager, nil
		}
	}

	return "npm", nil
}
