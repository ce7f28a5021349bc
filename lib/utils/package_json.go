package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type PackageJSON struct {
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	PackageManager  string            `json:"packageManager,omitempty"` // e.g., "pnpm@8.6.0"
}

func (p *PackageJSON) HasDependency(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	if _, ok := p.DevDependencies[name]; ok {
		return true
	}
	return false
}

// ReadPackageJSON reads the package.json in dir.
func ReadPackageJSON(dir string) (*PackageJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// InstalledPackage reads the manifest of module as installed in
// rootDir/node_modules.
func InstalledPackage(rootDir, module string) (*PackageJSON, error) {
	return ReadPackageJSON(filepath.Join(rootDir, "node_modules", filepath.FromSlash(module)))
}
