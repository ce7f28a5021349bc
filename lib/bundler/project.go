package bundler

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

// Project is a parsed project file: the build to run and the plugin
// configuration to attach to it.
type Project struct {
	Path      string
	Build     Options
	Externals externals.Config
}

type buildSection struct {
	EntryPoints []string `json:"entryPoints"`
	Outdir      string   `json:"outdir"`
	PublicPath  string   `json:"publicPath"`
	Externals   any      `json:"externals"`
	Pages       []string `json:"pages"`
	Minify      bool     `json:"minify"`
	Sourcemap   bool     `json:"sourcemap"`
}

// LoadProject reads the project file at configPath, or the first project
// file found in rootDir when configPath is empty. The externals section is
// schema-validated; a *externals.ValidationError lists every problem.
func LoadProject(rootDir, configPath string) (*Project, error) {
	path := configPath
	if path == "" {
		detected, err := utils.DetectConfigFile(rootDir)
		if err != nil {
			return nil, err
		}
		path = detected
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}

	doc, err := utils.ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := externals.DecodeConfig(doc["externals"])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var build buildSection
	if raw, ok := doc["build"]; ok {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode build section: %w", err)
		}
		if err := json.Unmarshal(data, &build); err != nil {
			return nil, fmt.Errorf("%s: invalid build section: %w", filepath.Base(path), err)
		}
	}

	hostExternals, err := externals.ParseExternals(build.Externals)
	if err != nil {
		return nil, fmt.Errorf("%s: build.%w", filepath.Base(path), err)
	}

	return &Project{
		Path: path,
		Build: Options{
			RootDir:     rootDir,
			EntryPoints: build.EntryPoints,
			Outdir:      build.Outdir,
			PublicPath:  build.PublicPath,
			Externals:   hostExternals,
			Pages:       build.Pages,
			Minify:      build.Minify,
			Sourcemap:   build.Sourcemap,
		},
		Externals: cfg,
	}, nil
}
