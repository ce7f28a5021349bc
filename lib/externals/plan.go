package externals

import (
	"maps"
	"regexp"
	"slices"
)

var urlEntry = regexp.MustCompile(`^(http:|https:)?//`)

// IsURL reports whether path is an absolute or protocol-relative URL.
func IsURL(path string) bool {
	return urlEntry.MatchString(path)
}

// Mapping maps a module name to the global variable that provides it at
// runtime. An empty global stands for an absent one: the import is left
// external without a global. Configured globals are never empty.
type Mapping map[string]string

func (m Mapping) clone() Mapping {
	if m == nil {
		return Mapping{}
	}
	return maps.Clone(m)
}

type Asset struct {
	Path string    `json:"path" yaml:"path"`
	Type AssetType `json:"type,omitempty" yaml:"type,omitempty"`
}

// Plan is everything derived from a validated Config. It is never mutated
// after BuildPlan returns; accessors hand out copies.
type Plan struct {
	externals       Mapping
	assetsToPrepend []Asset
	assetsToAppend  []Asset
	assetsToCopy    []string
	hash            bool
	outputPath      string
	publicPath      *string
	files           []string
}

func (p Plan) Externals() Mapping       { return p.externals.clone() }
func (p Plan) AssetsToPrepend() []Asset { return slices.Clone(p.assetsToPrepend) }
func (p Plan) AssetsToAppend() []Asset  { return slices.Clone(p.assetsToAppend) }
func (p Plan) AssetsToCopy() []string   { return slices.Clone(p.assetsToCopy) }
func (p Plan) Hash() bool               { return p.hash }
func (p Plan) OutputPath() string       { return p.outputPath }
func (p Plan) Files() []string          { return slices.Clone(p.files) }

// PublicPath returns the configured public path. ok is false when the
// host's public path should be used instead.
func (p Plan) PublicPath() (publicPath string, ok bool) {
	if p.publicPath == nil {
		return "", false
	}
	return *p.publicPath, true
}

// Summary is a serializable view of a Plan.
type Summary struct {
	Externals       Mapping  `json:"externals" yaml:"externals"`
	AssetsToPrepend []Asset  `json:"assetsToPrepend" yaml:"assetsToPrepend"`
	AssetsToAppend  []Asset  `json:"assetsToAppend" yaml:"assetsToAppend"`
	AssetsToCopy    []string `json:"assetsToCopy" yaml:"assetsToCopy"`
	Hash            bool     `json:"hash" yaml:"hash"`
	OutputPath      string   `json:"outputPath" yaml:"outputPath"`
	PublicPath      *string  `json:"publicPath" yaml:"publicPath"`
	Files           []string `json:"files,omitempty" yaml:"files,omitempty"`
}

func (p Plan) Summary() Summary {
	var publicPath *string
	if value, ok := p.PublicPath(); ok {
		publicPath = &value
	}
	return Summary{
		Externals:       p.Externals(),
		AssetsToPrepend: p.AssetsToPrepend(),
		AssetsToAppend:  p.AssetsToAppend(),
		AssetsToCopy:    p.AssetsToCopy(),
		Hash:            p.hash,
		OutputPath:      p.outputPath,
		PublicPath:      publicPath,
		Files:           p.Files(),
	}
}

type planBuilder struct {
	externals Mapping
	prepend   []Asset
	appended  []Asset
	copyList  []string
}

func newPlanBuilder() *planBuilder {
	return &planBuilder{
		externals: Mapping{},
		prepend:   []Asset{},
		appended:  []Asset{},
		copyList:  []string{},
	}
}

func (b *planBuilder) add(spec ExternalSpec) {
	global := ""
	if spec.Global != nil {
		global = *spec.Global
	}
	b.externals[spec.Module] = global

	var localEntries []string
	assets := make([]Asset, 0, len(spec.Entry))

	for _, entry := range spec.Entry {
		if IsURL(entry.Path) {
			assets = append(assets, Asset{Path: entry.Path, Type: entry.Type})
			continue
		}

		local := spec.Module + "/" + entry.Path
		localEntries = append(localEntries, local)
		assets = append(assets, Asset{Path: local, Type: entry.Type})
	}

	if spec.Append {
		b.appended = append(b.appended, assets...)
	} else {
		b.prepend = append(b.prepend, assets...)
	}

	b.copyList = append(b.copyList, localEntries...)
	for _, supplement := range spec.Supplements {
		b.copyList = append(b.copyList, spec.Module+"/"+supplement)
	}
}

// BuildPlan derives the plan for cfg. cfg is expected to have passed
// Validate; defaults are applied here.
func BuildPlan(cfg Config) Plan {
	cfg = cfg.WithDefaults()

	b := newPlanBuilder()
	for _, spec := range cfg.Externals {
		b.add(spec)
	}

	return Plan{
		externals:       b.externals,
		assetsToPrepend: b.prepend,
		assetsToAppend:  b.appended,
		assetsToCopy:    b.copyList,
		hash:            cfg.Hash,
		outputPath:      *cfg.OutputPath,
		publicPath:      cfg.PublicPath,
		files:           cfg.Files,
	}
}
