package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstalledPackage(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "@scope", "ui")

	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "@scope/ui", "version": "1.2.3", "unpkg": "dist/ui.min.js", "browser": {"./node.js": false}}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	pkg, err := InstalledPackage(dir, "@scope/ui")
	if err != nil {
		t.Fatalf("expected package manifest, got error: %v", err)
	}

	if pkg.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", pkg.Version)
	}
}

func TestInstalledPackageMissing(t *testing.T) {
	if _, err := InstalledPackage(t.TempDir(), "jquery"); !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestHasDependency(t *testing.T) {
	pkg := PackageJSON{
		Dependencies:    map[string]string{"react": "^18"},
		DevDependencies: map[string]string{"jquery": "^3"},
	}

	tests := []struct {
		name string
		want bool
	}{
		{"react", true},
		{"jquery", true},
		{"vue", false},
		{"lodash", false},
	}

	for _, tt := range tests {
		if got := pkg.HasDependency(tt.name); got != tt.want {
			t.Errorf("HasDependency(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
