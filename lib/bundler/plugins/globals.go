package plugins

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const globalsNamespace = "html-externals-global"

// GlobalsPlugin keeps modules out of the bundle. Imports of a module with
// a global resolve to that global at runtime; imports of a module without
// one are left as external imports.
type GlobalsPlugin struct {
	Globals map[string]string
}

func (p *GlobalsPlugin) New() api.Plugin {
	return api.Plugin{
		Name: "html-externals-globals",
		Setup: func(build api.PluginBuild) {
			if len(p.Globals) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: globalsFilter(p.Globals)}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				global, ok := p.Globals[args.Path]
				if !ok {
					return api.OnResolveResult{}, nil
				}

				if global == "" {
					return api.OnResolveResult{
						Path:     args.Path,
						External: true,
					}, nil
				}

				return api.OnResolveResult{
					Path:      args.Path,
					Namespace: globalsNamespace,
				}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: globalsNamespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				global, ok := p.Globals[args.Path]
				if !ok || global == "" {
					return api.OnLoadResult{}, fmt.Errorf("no global configured for %q", args.Path)
				}

				contents := GlobalModule(global)
				return api.OnLoadResult{
					Contents: &contents,
					Loader:   api.LoaderJS,
				}, nil
			})
		},
	}
}

// GlobalModule returns a CommonJS module re-exporting a global variable.
// Dotted names walk properties, so "Foo.Bar" reads globalThis["Foo"]["Bar"].
func GlobalModule(global string) string {
	var ref strings.Builder
	ref.WriteString("globalThis")
	for _, part := range strings.Split(global, ".") {
		ref.WriteString("[")
		ref.WriteString(toJSString(part))
		ref.WriteString("]")
	}
	return fmt.Sprintf("module.exports = %s;\n", ref.String())
}

func globalsFilter(globals map[string]string) string {
	modules := slices.Sorted(maps.Keys(globals))
	quoted := make([]string, len(modules))
	for i, module := range modules {
		quoted[i] = regexp.QuoteMeta(module)
	}
	return fmt.Sprintf(`^(%s)$`, strings.Join(quoted, "|"))
}

func toJSString(val string) string {
	b, _ := json.Marshal(val)
	return string(b)
}
