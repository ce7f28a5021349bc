package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"micromachine.dev/html-externals/lib/bundler/plugins"
	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

type Options struct {
	RootDir     string
	EntryPoints []string
	Outdir      string
	// PublicPath is the URL prefix the output directory is served from.
	PublicPath string
	Externals  externals.Externals
	// Pages are HTML templates written to Outdir with the bundle's tags.
	Pages       []string
	Minify      bool
	Sourcemap   bool
	Environment string
}

// Compiler is a single esbuild build that plugins attach to before Run.
type Compiler struct {
	Options Options
	plugins []api.Plugin
}

func NewCompiler(options Options) *Compiler {
	return &Compiler{Options: options}
}

func (c *Compiler) Externals() externals.Externals {
	return c.Options.Externals
}

func (c *Compiler) SetExternals(e externals.Externals) {
	c.Options.Externals = e
}

func (c *Compiler) PublicPath() string {
	return c.Options.PublicPath
}

func (c *Compiler) AddPlugin(p api.Plugin) {
	c.plugins = append(c.plugins, p)
}

// BuildOptions translates the compiler's options into esbuild options.
// Plugins run in the order: globals, pages, then every added plugin.
func (c *Compiler) BuildOptions() (api.BuildOptions, error) {
	absDir, err := filepath.Abs(c.Options.RootDir)
	if err != nil {
		return api.BuildOptions{}, fmt.Errorf("could not resolve absolute path: %w", err)
	}

	if len(c.Options.EntryPoints) == 0 {
		return api.BuildOptions{}, errors.New("no entry points configured")
	}

	outdir := c.Options.Outdir
	if outdir == "" {
		outdir = "dist"
	}

	patterns, globals := SplitExternals(c.Options.Externals)

	environment := c.Options.Environment
	if environment == "" {
		environment = "production"
	}

	globalsPlugin := plugins.GlobalsPlugin{Globals: globals}
	pagesPlugin := plugins.HTMLPagesPlugin{
		Templates:  c.Options.Pages,
		PublicPath: c.Options.PublicPath,
		Data: map[string]any{
			"publicPath":  c.Options.PublicPath,
			"environment": environment,
		},
	}

	sourcemap := api.SourceMapNone
	if c.Options.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	return api.BuildOptions{
		Plugins:           append([]api.Plugin{globalsPlugin.New(), pagesPlugin.New()}, c.plugins...),
		EntryPoints:       c.Options.EntryPoints,
		Outdir:            outdir,
		AbsWorkingDir:     absDir,
		Bundle:            true,
		Write:             true,
		AllowOverwrite:    true,
		LogLevel:          api.LogLevelSilent,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		TreeShaking:       api.TreeShakingTrue,
		Loader:            map[string]api.Loader{".js": api.LoaderJSX, ".mjs": api.LoaderJSX, ".cjs": api.LoaderJSX},
		Target:            api.ES2020,
		External:          patterns,
		MinifyWhitespace:  c.Options.Minify,
		MinifyIdentifiers: c.Options.Minify,
		MinifySyntax:      c.Options.Minify,
		Metafile:          true,
		Sourcemap:         sourcemap,
		Define: map[string]string{
			"process.env.NODE_ENV": toJSString(environment),
		},
	}, nil
}

// Run bundles the entry points and runs every attached plugin.
func (c *Compiler) Run() error {
	options, err := c.BuildOptions()
	if err != nil {
		slog.Error(fmt.Sprintf("✗ %v", err))
		return err
	}

	_, globals := SplitExternals(c.Options.Externals)
	c.reportModules(options.AbsWorkingDir, slices.Sorted(maps.Keys(globals)))

	start := time.Now()
	utils.LogWithColor(utils.Cyan, "Bundling application...")

	result := api.Build(options)

	if len(result.Errors) > 0 {
		for _, msg := range api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage}) {
			slog.Error(fmt.Sprintf("✗ %s", msg))
		}
		return fmt.Errorf("bundle failed with %d error(s)", len(result.Errors))
	}

	for _, msg := range api.FormatMessages(result.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage}) {
		slog.Warn(msg)
	}

	utils.LogWithColor(utils.Success, fmt.Sprintf("✓ Bundling completed in %s", time.Since(start)))
	return nil
}

// reportModules logs the installed version of each external module and
// warns about modules that are missing from node_modules or package.json.
func (c *Compiler) reportModules(rootDir string, modules []string) {
	project, err := utils.ReadPackageJSON(rootDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not read package.json", slog.Any("error", err))
	}

	install := "npm install"
	if manager, err := utils.DetectPackageManager(rootDir); err == nil {
		install = manager + " install"
	}

	for _, module := range modules {
		pkg, err := utils.InstalledPackage(rootDir, module)
		if err != nil {
			slog.Warn(fmt.Sprintf("External %q is not installed in %s, run `%s`", module, externals.DependencyStore, install))
			continue
		}

		if project != nil && !project.HasDependency(module) {
			slog.Warn(fmt.Sprintf("External %q is not declared in package.json", module))
		}

		slog.Debug("Resolved external", slog.String("module", module), slog.String("version", pkg.Version))
	}
}

// SplitExternals flattens the host externals setting into module patterns
// esbuild marks external and module globals for the globals plugin. For a
// list, the first mapping that names a module wins.
func SplitExternals(e externals.Externals) (patterns []string, globals map[string]string) {
	globals = map[string]string{}

	switch e := e.(type) {
	case externals.ExternalsMapping:
		maps.Copy(globals, e)
	case externals.ExternalsList:
		for _, item := range e {
			if item.Module != "" {
				patterns = append(patterns, item.Module)
				continue
			}
			for module, global := range item.Mapping {
				if _, seen := globals[module]; !seen {
					globals[module] = global
				}
			}
		}
	}

	return patterns, globals
}

func toJSString(val string) string {
	b, _ := json.Marshal(val)
	return string(b)
}
