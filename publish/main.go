package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const binName = "html-externals"

var targets = []struct {
	GOOS   string
	GOARCH string
	NPMPkg string
}{
	{"darwin", "arm64", "darwin-arm64"},
	{"darwin", "amd64", "darwin-x64"},
	{"linux", "arm64", "linux-arm64"},
	{"linux", "amd64", "linux-x64"},
	{"windows", "arm64", "win32-arm64"},
	{"windows", "amd64", "win32-x64"},
}

// Cross-compiles the CLI into the bin directory of each platform package,
// e.g. npm/@micromachine.dev/html-externals-linux-x64/bin.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./publish <version>")
		os.Exit(2)
	}
	version := os.Args[1]

	for _, t := range targets {
		fmt.Printf("Building %s/%s...\n", t.GOOS, t.GOARCH)

		name := binName
		if t.GOOS == "windows" {
			name += ".exe"
		}

		outDir := filepath.Join("npm", "@micromachine.dev", binName+"-"+t.NPMPkg, "bin")
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			os.Exit(1)
		}

		cmd := exec.Command("go", "build",
			"-trimpath",
			"-ldflags", fmt.Sprintf("-s -w -X main.Version=%s", version),
			"-o", filepath.Join(outDir, name),
			".",
		)
		cmd.Env = append(os.Environ(),
			"GOOS="+t.GOOS,
			"GOARCH="+t.GOARCH,
			"CGO_ENABLED=0",
		)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s/%s: %v\n", t.GOOS, t.GOARCH, err)
			os.Exit(1)
		}
	}
}
