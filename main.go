/*
Copyright © 2026 Micromachine
*/
package main

import (
	"log/slog"
	"os"

	"micromachine.dev/html-externals/cmd"
	"micromachine.dev/html-externals/lib/utils"
)

// Version is set at release time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	slog.SetDefault(slog.New(utils.NewColorHandler(os.Stderr, slog.LevelInfo)))
	cmd.Execute(Version)
}
