package bundler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"micromachine.dev/html-externals/lib/externals"
	"micromachine.dev/html-externals/lib/utils"
)

func TestLoadProject(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{
			"yaml",
			"html-externals.yaml",
			`
build:
  entryPoints: [src/index.js]
  outdir: public
  publicPath: /static/
  externals:
    - lodash
    - react: React
  pages: [src/index.html]
externals:
  externals:
    - module: jquery
      entry: dist/jquery.min.js
      global: jQuery
  outputPath: libs
`,
		},
		{
			"toml",
			"html-externals.toml",
			`
[build]
entryPoints = ["src/index.js"]
outdir = "public"
publicPath = "/static/"
externals = ["lodash", { react = "React" }]
pages = ["src/index.html"]

[externals]
outputPath = "libs"

[[externals.externals]]
module = "jquery"
entry = "dist/jquery.min.js"
global = "jQuery"
`,
		},
		{
			"jsonc",
			"html-externals.jsonc",
			`{
  // the host build
  "build": {
    "entryPoints": ["src/index.js"],
    "outdir": "public",
    "publicPath": "/static/",
    "externals": ["lodash", {"react": "React"}],
    "pages": ["src/index.html"],
  },
  "externals": {
    "externals": [{"module": "jquery", "entry": "dist/jquery.min.js", "global": "jQuery"}],
    "outputPath": "libs",
  },
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{tt.file: tt.contents})

			project, err := LoadProject(dir, "")
			require.NoError(t, err)

			assert.Equal(t, []string{"src/index.js"}, project.Build.EntryPoints)
			assert.Equal(t, "public", project.Build.Outdir)
			assert.Equal(t, "/static/", project.Build.PublicPath)
			assert.Equal(t, []string{"src/index.html"}, project.Build.Pages)
			assert.Equal(t, externals.ExternalsList{
				{Module: "lodash"},
				{Mapping: externals.Mapping{"react": "React"}},
			}, project.Build.Externals)

			require.Len(t, project.Externals.Externals, 1)
			assert.Equal(t, "jquery", project.Externals.Externals[0].Module)
			require.NotNil(t, project.Externals.OutputPath)
			assert.Equal(t, "libs", *project.Externals.OutputPath)
		})
	}
}

func TestLoadProjectExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"config/custom.yml": "externals:\n  externals:\n    - module: a\n      entry: a.js\n",
	})

	project, err := LoadProject(dir, "config/custom.yml")
	require.NoError(t, err)
	assert.Equal(t, "a", project.Externals.Externals[0].Module)
	assert.Nil(t, project.Build.Externals)
}

func TestLoadProjectInvalidExternals(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"html-externals.json": `{"externals": {"externals": []}}`,
	})

	_, err := LoadProject(dir, "")
	assert.True(t, errors.Is(err, externals.ErrInvalidConfig))
}

func TestLoadProjectMissingFile(t *testing.T) {
	_, err := LoadProject(t.TempDir(), "")
	assert.True(t, errors.Is(err, utils.ErrNoConfigFile))
}
