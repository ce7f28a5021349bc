package externals

import (
	"log/slog"

	"micromachine.dev/html-externals/lib/bundler/plugins"
)

// DependencyStore is where external modules are installed, relative to the
// build's working directory.
const DependencyStore = "node_modules"

// Plugin externalizes modules, copies their files into the output and
// injects tags for them into the generated pages.
type Plugin struct {
	plan Plan
}

// New validates cfg and plans it. It fails with a *ValidationError listing
// every problem when cfg is invalid.
func New(cfg Config) (*Plugin, error) {
	if violations := cfg.Validate(); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return &Plugin{plan: BuildPlan(cfg)}, nil
}

func (p *Plugin) Plan() Plan {
	return p.plan
}

// Apply attaches the plugin to host: it merges the planned externals into
// the host's externals and registers the copy plugin followed by the
// prepend and append injectors.
func (p *Plugin) Apply(host Host) {
	host.SetExternals(MergeExternals(host.Externals(), p.plan.Externals()))

	publicPath, ok := p.plan.PublicPath()
	if !ok {
		publicPath = host.PublicPath()
	}

	rules, injections := p.Requests(publicPath)

	host.AddPlugin((&plugins.CopyFilesPlugin{Rules: rules}).New())
	for _, options := range injections {
		host.AddPlugin((&plugins.IncludeAssetsPlugin{Options: options}).New())
	}

	slog.Debug("Applied html-externals",
		slog.Int("externals", len(p.plan.externals)),
		slog.Int("copy", len(rules)),
		slog.Int("injectors", len(injections)),
		slog.String("publicPath", publicPath))
}

// Requests builds the collaborator requests for a resolved public path:
// one copy request, then an injection request for the prepend and the
// append assets, each omitted when it has no assets.
func (p *Plugin) Requests(publicPath string) ([]plugins.CopyRule, []plugins.IncludeAssetsOptions) {
	outputPath := p.plan.OutputPath()

	rules := make([]plugins.CopyRule, len(p.plan.assetsToCopy))
	for i, asset := range p.plan.assetsToCopy {
		rules[i] = plugins.CopyRule{
			From: DependencyStore + "/" + asset,
			To:   outputPath + "/" + asset,
		}
	}

	var injections []plugins.IncludeAssetsOptions
	for _, group := range []struct {
		assets []Asset
		append bool
	}{
		{p.plan.assetsToPrepend, false},
		{p.plan.assetsToAppend, true},
	} {
		if len(group.assets) == 0 {
			continue
		}

		assets := make([]plugins.Asset, len(group.assets))
		for i, asset := range group.assets {
			path := asset.Path
			if !IsURL(path) {
				path = publicPath + outputPath + "/" + path
			}
			assets[i] = plugins.Asset{Path: path, Type: string(asset.Type)}
		}

		injections = append(injections, plugins.IncludeAssetsOptions{
			Assets:     assets,
			Append:     group.append,
			Hash:       p.plan.hash,
			Files:      p.plan.Files(),
			PublicPath: "",
		})
	}

	return rules, injections
}
