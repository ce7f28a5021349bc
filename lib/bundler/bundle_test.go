package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"micromachine.dev/html-externals/lib/externals"
)

func TestSplitExternals(t *testing.T) {
	tests := []struct {
		name     string
		input    externals.Externals
		patterns []string
		globals  map[string]string
	}{
		{"unset", nil, nil, map[string]string{}},
		{
			"mapping",
			externals.ExternalsMapping{"react": "React", "side": ""},
			nil,
			map[string]string{"react": "React", "side": ""},
		},
		{
			"list",
			externals.ExternalsList{
				{Module: "lodash"},
				{Mapping: externals.Mapping{"react": "React"}},
				{Mapping: externals.Mapping{"react": "Preact", "vue": "Vue"}},
			},
			[]string{"lodash"},
			map[string]string{"react": "React", "vue": "Vue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns, globals := SplitExternals(tt.input)
			assert.Equal(t, tt.patterns, patterns)
			assert.Equal(t, tt.globals, globals)
		})
	}
}

func TestBuildOptions(t *testing.T) {
	compiler := NewCompiler(Options{
		RootDir:     t.TempDir(),
		EntryPoints: []string{"src/index.js"},
		Externals:   externals.ExternalsList{{Module: "lodash"}},
	})
	compiler.AddPlugin(api.Plugin{Name: "first"})
	compiler.AddPlugin(api.Plugin{Name: "second"})

	options, err := compiler.BuildOptions()
	require.NoError(t, err)

	names := make([]string, len(options.Plugins))
	for i, p := range options.Plugins {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"html-externals-globals", "html-externals-pages", "first", "second"}, names)
	assert.Equal(t, []string{"lodash"}, options.External)
	assert.Equal(t, "dist", options.Outdir)
	assert.True(t, filepath.IsAbs(options.AbsWorkingDir))
	assert.True(t, options.Metafile)
	assert.Equal(t, `"production"`, options.Define["process.env.NODE_ENV"])
}

func TestBuildOptionsRequiresEntryPoints(t *testing.T) {
	_, err := NewCompiler(Options{RootDir: t.TempDir()}).BuildOptions()
	assert.Error(t, err)
}

func TestCompilerIsHost(t *testing.T) {
	var host externals.Host = NewCompiler(Options{PublicPath: "/app/"})

	assert.Equal(t, "/app/", host.PublicPath())
	assert.Nil(t, host.Externals())

	host.SetExternals(externals.ExternalsMapping{"a": "A"})
	assert.Equal(t, externals.ExternalsMapping{"a": "A"}, host.Externals())
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}
}

func TestRunWithPlugin(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":                           `{"name": "app", "dependencies": {"jquery": "^3.7.1"}}`,
		"node_modules/jquery/package.json":       `{"name": "jquery", "version": "3.7.1"}`,
		"node_modules/jquery/dist/jquery.min.js": `window.jQuery = function () {};`,
		"src/index.js":                           "import $ from \"jquery\";\n$(\"#root\");\n",
		"src/index.html":                         `<!DOCTYPE html><html><head><title>App</title></head><body><div id="root"></div></body></html>`,
	})

	global := "jQuery"
	plugin, err := externals.New(externals.Config{Externals: []externals.ExternalSpec{
		{Module: "jquery", Entry: externals.Entries{{Path: "dist/jquery.min.js"}}, Global: &global},
	}})
	require.NoError(t, err)

	compiler := NewCompiler(Options{
		RootDir:     dir,
		EntryPoints: []string{"src/index.js"},
		Outdir:      "dist",
		PublicPath:  "/",
		Pages:       []string{"src/index.html"},
	})
	plugin.Apply(compiler)

	require.NoError(t, compiler.Run())

	bundle, err := os.ReadFile(filepath.Join(dir, "dist", "index.js"))
	require.NoError(t, err)
	assert.Contains(t, string(bundle), "jQuery")
	assert.NotContains(t, string(bundle), "window.jQuery = function")

	vendored, err := os.ReadFile(filepath.Join(dir, "dist", "vendor", "jquery", "dist", "jquery.min.js"))
	require.NoError(t, err)
	assert.Equal(t, `window.jQuery = function () {};`, string(vendored))

	page, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)

	vendorTag := strings.Index(string(page), `src="/vendor/jquery/dist/jquery.min.js"`)
	bundleTag := strings.Index(string(page), `src="/index.js"`)
	require.NotEqual(t, -1, vendorTag, string(page))
	require.NotEqual(t, -1, bundleTag, string(page))
	assert.Less(t, vendorTag, bundleTag)
}
