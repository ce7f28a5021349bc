package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"micromachine.dev/html-externals/lib/utils"
)

const envPrefix = "HTML_EXTERNALS"

var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "html-externals",
	Short: "Load vendor modules from pre-built files instead of bundling them",
	Long: `html-externals bundles your entry points with esbuild while keeping the
configured vendor modules out of the bundle. Their pre-built files are
copied from node_modules into the output directory and <script>/<link>
tags for them are injected into the generated HTML pages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if settings.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(utils.NewColorHandler(os.Stderr, level)))
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("rootdir", "r", ".", "--rootdir ./apps/web")
	rootCmd.PersistentFlags().StringP("config", "c", "", "--config html-externals.yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "--verbose")

	_ = settings.BindPFlag("rootdir", rootCmd.PersistentFlags().Lookup("rootdir"))
	_ = settings.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = settings.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
}
