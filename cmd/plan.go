package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"micromachine.dev/html-externals/lib/bundler"
	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Prints the externals, files to copy and tags to inject",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := bundler.LoadProject(settings.GetString("rootdir"), settings.GetString("config"))
		if err != nil {
			return err
		}

		plugin, err := externals.New(project.Externals)
		if err != nil {
			return err
		}

		return writePlan(cmd.OutOrStdout(), planFormat, plugin.Plan().Summary())
	},
}

func writePlan(w io.Writer, format string, summary externals.Summary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(summary)
	case "text":
		modules := slices.Sorted(maps.Keys(summary.Externals))
		width := 0
		for _, module := range modules {
			width = max(width, runewidth.StringWidth(module))
		}

		fmt.Fprintln(w, utils.Info.Render("Externals"))
		for _, module := range modules {
			global := summary.Externals[module]
			if global == "" {
				global = "(external import)"
			}
			fmt.Fprintf(w, "  %s → %s\n", runewidth.FillRight(module, width), global)
		}
		fmt.Fprintln(w, utils.Info.Render("Copy"))
		for _, asset := range summary.AssetsToCopy {
			fmt.Fprintf(w, "  %s/%s → %s/%s\n", externals.DependencyStore, asset, summary.OutputPath, asset)
		}
		fmt.Fprintln(w, utils.Info.Render("Prepend"))
		for _, asset := range summary.AssetsToPrepend {
			fmt.Fprintf(w, "  %s\n", asset.Path)
		}
		fmt.Fprintln(w, utils.Info.Render("Append"))
		for _, asset := range summary.AssetsToAppend {
			fmt.Fprintf(w, "  %s\n", asset.Path)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected json, yaml or text", format)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFormat, "format", "f", "text", "--format json|yaml|text")
}
