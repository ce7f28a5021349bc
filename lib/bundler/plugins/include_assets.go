package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	xhtml "golang.org/x/net/html"
)

const includeAssetsName = "html-externals-include-assets"

// Asset is a tag to inject. Type is "js" or "css"; when empty it is
// inferred from the path's extension.
type Asset struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

type IncludeAssetsOptions struct {
	Assets []Asset `json:"assets" yaml:"assets"`
	// Append places tags before </head> and </body> instead of right
	// after <head> and <body>.
	Append bool `json:"append" yaml:"append"`
	// Hash appends the build hash as a query string to every asset.
	Hash bool `json:"hash" yaml:"hash"`
	// Files limits injection to pages whose outdir-relative path matches
	// one of these globs. Nil means every page.
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`
	// PublicPath is prefixed to every non-URL asset path.
	PublicPath string `json:"publicPath" yaml:"publicPath"`
}

// IncludeAssetsPlugin injects <script> and <link> tags into the HTML pages
// found in the output directory after a successful build.
type IncludeAssetsPlugin struct {
	Options IncludeAssetsOptions
	Fs      afero.Fs
}

func (p *IncludeAssetsPlugin) New() api.Plugin {
	return api.Plugin{
		Name: includeAssetsName,
		Setup: func(build api.PluginBuild) {
			fsys := fsOrDefault(p.Fs)
			if p.Options.Hash {
				build.InitialOptions.Metafile = true
			}

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 || len(p.Options.Assets) == 0 {
					return api.OnEndResult{}, nil
				}

				hash := ""
				if p.Options.Hash {
					outputs, err := buildOutputs(fsys, result, build.InitialOptions.AbsWorkingDir)
					if err != nil {
						return failed(includeAssetsName, err), nil
					}
					hash = BuildHash(outputs)
				}

				if err := IncludeAssets(fsys, OutputDir(build.InitialOptions), p.Options, hash); err != nil {
					return failed(includeAssetsName, err), nil
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

// IncludeAssets rewrites every matching page under outDir. hash is
// appended to asset URLs when options.Hash is set.
func IncludeAssets(fsys afero.Fs, outDir string, options IncludeAssetsOptions, hash string) error {
	assets := make([]Asset, len(options.Assets))
	for i, asset := range options.Assets {
		asset.Path = assetURL(options.PublicPath, asset.Path, hash)
		assets[i] = asset
	}

	pages, err := findPages(fsys, outDir, options.Files)
	if err != nil {
		return err
	}

	var errs []error
	for _, page := range pages {
		data, err := afero.ReadFile(fsys, page)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		info, err := fsys.Stat(page)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := afero.WriteFile(fsys, page, InjectTags(data, assets, options.Append), info.Mode()); err != nil {
			errs = append(errs, fmt.Errorf("could not write %s: %w", page, err))
		}
	}
	return errors.Join(errs...)
}

func findPages(fsys afero.Fs, outDir string, patterns []string) ([]string, error) {
	var pages []string
	err := afero.Walk(fsys, outDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}

		if MatchPage(filepath.ToSlash(rel), patterns) {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list pages in %s: %w", outDir, err)
	}
	return pages, nil
}

// MatchPage reports whether the page at rel (slash separated, relative to
// the output directory) is selected by patterns. Nil patterns select every
// page.
func MatchPage(rel string, patterns []string) bool {
	if patterns == nil {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func assetURL(publicPath, path, hash string) string {
	if !isURL(path) {
		path = publicPath + path
	}
	if hash == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + hash
	}
	return path + "?" + hash
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "//") || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func assetType(asset Asset) string {
	if asset.Type != "" {
		return asset.Type
	}
	p := asset.Path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if strings.EqualFold(filepath.Ext(p), ".css") {
		return "css"
	}
	return "js"
}

func renderTag(asset Asset) string {
	src := html.EscapeString(asset.Path)
	if assetType(asset) == "css" {
		return fmt.Sprintf(`<link href="%s" rel="stylesheet">`, src)
	}
	return fmt.Sprintf(`<script type="text/javascript" src="%s"></script>`, src)
}

// InjectTags adds assets to an HTML document. Stylesheets go into <head>,
// scripts into <body>, in the order given. Everything else in the document
// is kept byte for byte. When <head> or <body> is missing, prepended tags
// go right after <html>, or before the first element when there is no
// <html> either, so a leading doctype stays first. Appended tags go at the
// end of such a document.
func InjectTags(doc []byte, assets []Asset, appendTags bool) []byte {
	var headTags, bodyTags strings.Builder
	for _, asset := range assets {
		if assetType(asset) == "css" {
			headTags.WriteString(renderTag(asset))
		} else {
			bodyTags.WriteString(renderTag(asset))
		}
	}

	pending := map[string]string{"head": headTags.String(), "body": bodyTags.String()}

	var out bytes.Buffer
	insertAt := -1
	z := xhtml.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				out.Write(z.Raw())
			}
			break
		}

		raw := bytes.Clone(z.Raw())
		name, _ := z.TagName()
		tag := string(name)

		if insertAt < 0 && !isPrologue(tt, raw) {
			insertAt = out.Len()
			if tt == xhtml.StartTagToken && tag == "html" {
				insertAt += len(raw)
			}
		}

		switch {
		case tt == xhtml.StartTagToken && !appendTags && pending[tag] != "":
			out.Write(raw)
			out.WriteString(pending[tag])
			pending[tag] = ""
		case tt == xhtml.EndTagToken && appendTags && pending[tag] != "":
			out.WriteString(pending[tag])
			out.Write(raw)
			pending[tag] = ""
		default:
			out.Write(raw)
		}
	}

	leftover := pending["head"] + pending["body"]
	if leftover == "" {
		return out.Bytes()
	}
	if appendTags {
		out.WriteString(leftover)
		return out.Bytes()
	}

	if insertAt < 0 {
		insertAt = out.Len()
	}
	result := out.Bytes()
	return slices.Concat(result[:insertAt], []byte(leftover), result[insertAt:])
}

// isPrologue reports whether a token may precede the document element:
// a doctype, a comment or whitespace.
func isPrologue(tt xhtml.TokenType, raw []byte) bool {
	switch tt {
	case xhtml.DoctypeToken, xhtml.CommentToken:
		return true
	case xhtml.TextToken:
		return len(bytes.TrimSpace(raw)) == 0
	}
	return false
}
