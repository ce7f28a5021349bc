package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"micromachine.dev/html-externals/lib/bundler"
	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Bundles the entry points and wires up the vendor files",
	Long: `The build command prepares your application for deployment.
It performs the following steps:
1. Locates and parses the html-externals configuration file (toml, json, jsonc or yaml).
2. Validates the externals configuration and plans the vendor files.
3. Bundles the entry points with the externals resolved to their globals.
4. Copies the vendor files from node_modules and injects their tags into the HTML pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := bundler.LoadProject(settings.GetString("rootdir"), settings.GetString("config"))
		if err != nil {
			return err
		}
		slog.Debug("Loaded configuration", slog.String("path", project.Path))

		plugin, err := externals.New(project.Externals)
		if err != nil {
			return err
		}

		options := project.Build
		if outdir := settings.GetString("outdir"); outdir != "" {
			options.Outdir = outdir
		}
		options.Environment = settings.GetString("env")
		if settings.GetBool("minify") {
			options.Minify = true
		}

		compiler := bundler.NewCompiler(options)
		plugin.Apply(compiler)

		start := time.Now()
		utils.LogWithColor(utils.Cyan, "Running `html-externals build`...")
		if err := compiler.Run(); err != nil {
			return err
		}

		utils.LogWithColor(utils.Success, fmt.Sprintf("✓ Completed `html-externals build` in %s", time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("env", "e", "production", "--env production")
	buildCmd.Flags().StringP("outdir", "o", "", "--outdir dist")
	buildCmd.Flags().Bool("minify", false, "--minify")

	_ = settings.BindPFlag("env", buildCmd.Flags().Lookup("env"))
	_ = settings.BindPFlag("outdir", buildCmd.Flags().Lookup("outdir"))
	_ = settings.BindPFlag("minify", buildCmd.Flags().Lookup("minify"))
}
