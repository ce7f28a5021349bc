package plugins

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"micromachine.dev/html-externals/lib/utils"
)

const copyFilesName = "html-externals-copy"

// CopyRule copies one file. From is relative to the build's working
// directory, To to its output directory.
type CopyRule struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// CopyFilesPlugin copies files verbatim into the output directory once a
// build has succeeded.
type CopyFilesPlugin struct {
	Rules []CopyRule
	Fs    afero.Fs
}

func (p *CopyFilesPlugin) New() api.Plugin {
	return api.Plugin{
		Name: copyFilesName,
		Setup: func(build api.PluginBuild) {
			fsys := fsOrDefault(p.Fs)

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 || len(p.Rules) == 0 {
					return api.OnEndResult{}, nil
				}

				start := time.Now()
				err := CopyFiles(fsys, build.InitialOptions.AbsWorkingDir, OutputDir(build.InitialOptions), p.Rules)
				if err != nil {
					return failed(copyFilesName, err), nil
				}

				utils.LogWithColor(utils.Success, fmt.Sprintf("✓ Copied %d vendor file(s) in %s", len(p.Rules), time.Since(start)))
				return api.OnEndResult{}, nil
			})
		},
	}
}

// CopyFiles applies every rule and reports all failures together. Rules
// are copied concurrently.
func CopyFiles(fsys afero.Fs, workDir, outDir string, rules []CopyRule) error {
	errs := make([]error, len(rules))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, rule := range rules {
		g.Go(func() error {
			src := resolvePath(workDir, rule.From)
			dst := resolvePath(outDir, rule.To)

			if err := copyFile(fsys, src, dst); err != nil {
				errs[i] = fmt.Errorf("could not copy %s: %w", rule.From, err)
				return nil
			}
			slog.Debug("Copied vendor file", slog.String("from", rule.From), slog.String("to", rule.To))
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}

func copyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	return afero.WriteFile(fsys, dst, data, info.Mode())
}
