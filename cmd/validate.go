package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"micromachine.dev/html-externals/lib/bundler"
	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks the configuration and lists every problem found",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := bundler.LoadProject(settings.GetString("rootdir"), settings.GetString("config"))
		if err == nil {
			_, err = externals.New(project.Externals)
		}

		var verr *externals.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %s", v))
			}
			return fmt.Errorf("configuration has %d problem(s)", len(verr.Violations))
		}
		if err != nil {
			return err
		}

		utils.LogWithColor(utils.Success, fmt.Sprintf("✓ %s is valid", project.Path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
