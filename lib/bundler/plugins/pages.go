package plugins

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

const htmlPagesName = "html-externals-pages"

// HTMLPagesPlugin writes each template into the output directory with tags
// for the build's entry point outputs appended. It must run before any
// IncludeAssetsPlugin so those find the pages.
//
// Templates are Handlebars documents rendered with Data, so a page can
// reference {{publicPath}} or {{environment}}.
type HTMLPagesPlugin struct {
	Templates  []string
	PublicPath string
	Data       map[string]any
	Fs         afero.Fs
}

func (p *HTMLPagesPlugin) New() api.Plugin {
	return api.Plugin{
		Name: htmlPagesName,
		Setup: func(build api.PluginBuild) {
			if len(p.Templates) == 0 {
				return
			}

			build.InitialOptions.Metafile = true
			fsys := fsOrDefault(p.Fs)

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				meta, err := parseMetafile(result.Metafile)
				if err != nil {
					return failed(htmlPagesName, fmt.Errorf("could not read metafile: %w", err)), nil
				}

				workDir := build.InitialOptions.AbsWorkingDir
				outDir := OutputDir(build.InitialOptions)
				assets := EntryAssets(meta, workDir, outDir, p.PublicPath)

				var errs []error
				for _, template := range p.Templates {
					if err := writePage(fsys, resolvePath(workDir, template), outDir, p.Data, assets); err != nil {
						errs = append(errs, err)
					}
				}
				if err := errors.Join(errs...); err != nil {
					return failed(htmlPagesName, err), nil
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

// EntryAssets lists the scripts and stylesheets emitted for entry points,
// as URLs under publicPath. Metafile paths are relative to workDir.
func EntryAssets(meta *Metafile, workDir, outDir, publicPath string) []Asset {
	var assets []Asset
	for _, output := range slices.Sorted(maps.Keys(meta.Outputs)) {
		info := meta.Outputs[output]
		if info.EntryPoint == "" {
			continue
		}

		if url, ok := outputURL(workDir, outDir, publicPath, info.CSSBundle); ok {
			assets = append(assets, Asset{Path: url, Type: "css"})
		}

		switch strings.ToLower(filepath.Ext(output)) {
		case ".js", ".mjs":
			if url, ok := outputURL(workDir, outDir, publicPath, output); ok {
				assets = append(assets, Asset{Path: url, Type: "js"})
			}
		case ".css":
			if url, ok := outputURL(workDir, outDir, publicPath, output); ok {
				assets = append(assets, Asset{Path: url, Type: "css"})
			}
		}
	}
	return assets
}

func outputURL(workDir, outDir, publicPath, output string) (string, bool) {
	if output == "" {
		return "", false
	}
	rel, err := filepath.Rel(outDir, resolvePath(workDir, output))
	if err != nil {
		return "", false
	}
	return publicPath + filepath.ToSlash(rel), true
}

func writePage(fsys afero.Fs, template, outDir string, data map[string]any, assets []Asset) error {
	source, err := afero.ReadFile(fsys, template)
	if err != nil {
		return fmt.Errorf("could not read page template: %w", err)
	}

	rendered, err := raymond.Render(string(source), data)
	if err != nil {
		return fmt.Errorf("could not render %s: %w", filepath.Base(template), err)
	}

	if err := fsys.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	page := filepath.Join(outDir, filepath.Base(template))
	return afero.WriteFile(fsys, page, InjectTags([]byte(rendered), assets, true), 0644)
}
